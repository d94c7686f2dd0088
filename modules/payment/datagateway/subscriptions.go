package datagateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/auditforge/paygate/modules/payment/internal/entity"
)

type SubscriptionDataGateway interface {
	// GetSubscription returns the subscription state of an account.
	// Returns errs.NotFound if the account does not exist.
	GetSubscription(ctx context.Context, accountID uuid.UUID) (*entity.Subscription, error)

	// ApplyConfirmedPayment records the payment in the ledger and promotes the
	// account tier as one atomic unit. Returns errs.Duplicate if the
	// transaction hash was already applied, with no account change, and
	// errs.NotFound if the account does not exist.
	ApplyConfirmedPayment(ctx context.Context, params entity.ApplyPaymentParams) (*entity.Subscription, error)
}
