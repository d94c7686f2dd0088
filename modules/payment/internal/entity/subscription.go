package entity

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/auditforge/paygate/modules/payment/payment"
)

// Subscription is the current subscription state of one account.
type Subscription struct {
	AccountID         uuid.UUID
	Tier              payment.Tier
	ExpiresAt         *time.Time
	LastPaymentTxHash *string
}

// ProcessedPayment is one ledger row. The transaction hash is the natural key
// and guarantees a hash is applied at most once.
type ProcessedPayment struct {
	TxHash    string
	AccountID uuid.UUID
	Tier      payment.Tier
	ChainID   uint64
	Amount    *big.Int
	AppliedAt time.Time
}

// ApplyPaymentParams carries everything needed to record a confirmed payment
// and promote the account in one atomic write.
type ApplyPaymentParams struct {
	AccountID    uuid.UUID
	TxHash       string
	Tier         payment.Tier
	ChainID      uint64
	Amount       *big.Int
	ValidityDays int
}
