package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/internal/entity"
	"github.com/auditforge/paygate/modules/payment/payment"
	"github.com/auditforge/paygate/pkg/logger"
	"github.com/auditforge/paygate/pkg/logger/slogx"
)

// VerifyAndUpgradeResult is the outcome of one verify-and-upgrade request.
type VerifyAndUpgradeResult struct {
	Outcome payment.VerificationOutcome

	// Subscription is the account state after a successful upgrade.
	// Nil unless the payment confirmed and applied in this request.
	Subscription *entity.Subscription

	// AlreadyProcessed reports that the claimed transaction hash was applied
	// by an earlier request. The account was not changed again.
	AlreadyProcessed bool
}

// VerifyAndUpgrade verifies a payment claim and, when it confirms, applies it
// to the account's subscription exactly once.
//
// The claimed amount must equal the tier price before any chain lookup
// happens: a real on-chain transfer of the wrong amount must never confirm a
// tier it did not pay for.
func (u *Usecase) VerifyAndUpgrade(ctx context.Context, accountID uuid.UUID, claim payment.PaymentClaim) (VerifyAndUpgradeResult, error) {
	entry, err := u.pricing.AmountFor(claim.Tier)
	if err != nil {
		return VerifyAndUpgradeResult{Outcome: invalidOutcome(claim, "tier cannot be purchased")}, nil
	}
	if claim.Amount == nil || claim.Amount.Cmp(entry.AmountDue) != 0 {
		return VerifyAndUpgradeResult{Outcome: invalidOutcome(claim, "claimed amount does not match the tier price")}, nil
	}

	outcome := u.verifier.Verify(ctx, claim)
	u.metrics.AddVerification(string(outcome.Status), claim.ChainID)
	if outcome.Status != payment.StatusConfirmed {
		return VerifyAndUpgradeResult{Outcome: outcome}, nil
	}

	sub, err := u.subscriptionDg.ApplyConfirmedPayment(ctx, entity.ApplyPaymentParams{
		AccountID:    accountID,
		TxHash:       claim.TxHash,
		Tier:         claim.Tier,
		ChainID:      claim.ChainID,
		Amount:       claim.Amount,
		ValidityDays: entry.ValidityDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.Duplicate):
			u.metrics.AddLedgerApply("duplicate")
			return VerifyAndUpgradeResult{Outcome: outcome, AlreadyProcessed: true}, nil
		case errors.Is(err, errs.NotFound):
			u.metrics.AddLedgerApply("account_not_found")
			return VerifyAndUpgradeResult{}, errors.WithStack(err)
		default:
			u.metrics.AddLedgerApply("error")
			return VerifyAndUpgradeResult{}, errors.Wrap(err, "failed to apply confirmed payment")
		}
	}
	u.metrics.AddLedgerApply("applied")

	logger.InfoContext(ctx, "payment applied to subscription",
		slogx.String("tx_hash", claim.TxHash),
		slogx.Stringer("account_id", accountID),
		slogx.String("tier", claim.Tier.String()),
		slogx.Uint64("chain_id", claim.ChainID),
	)
	return VerifyAndUpgradeResult{Outcome: outcome, Subscription: sub}, nil
}

// CheckClaim verifies a claim without touching any account state. Intended
// for polling a payment before committing it to an account.
func (u *Usecase) CheckClaim(ctx context.Context, claim payment.PaymentClaim) payment.VerificationOutcome {
	outcome := u.verifier.Verify(ctx, claim)
	u.metrics.AddVerification(string(outcome.Status), claim.ChainID)
	return outcome
}

func invalidOutcome(claim payment.PaymentClaim, message string) payment.VerificationOutcome {
	return payment.VerificationOutcome{
		Status:    payment.StatusInvalid,
		Message:   message,
		TxHash:    claim.TxHash,
		Timestamp: time.Now().UTC(),
	}
}
