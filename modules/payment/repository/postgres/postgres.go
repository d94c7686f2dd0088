package postgres

import (
	"github.com/auditforge/paygate/internal/postgres"
	"github.com/auditforge/paygate/modules/payment/datagateway"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db}
}

var _ datagateway.SubscriptionDataGateway = (*Repository)(nil)
