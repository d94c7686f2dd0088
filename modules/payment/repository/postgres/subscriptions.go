package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/internal/entity"
	"github.com/auditforge/paygate/modules/payment/payment"
)

const getSubscriptionSQL = `
SELECT id, tier, subscription_expires_at, last_payment_tx_hash
FROM accounts
WHERE id = $1`

func (repo *Repository) GetSubscription(ctx context.Context, accountID uuid.UUID) (*entity.Subscription, error) {
	var (
		sub  entity.Subscription
		tier string
	)
	err := repo.db.QueryRow(ctx, getSubscriptionSQL, accountID).
		Scan(&sub.AccountID, &tier, &sub.ExpiresAt, &sub.LastPaymentTxHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "account %s", accountID)
		}
		return nil, errors.Wrap(err, "failed to get subscription")
	}
	sub.Tier = payment.Tier(tier)
	return &sub, nil
}

const insertProcessedPaymentSQL = `
INSERT INTO processed_payments (tx_hash, account_id, tier, chain_id, amount)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (tx_hash) DO NOTHING`

const promoteAccountSQL = `
UPDATE accounts
SET tier = $2,
	subscription_expires_at = GREATEST(COALESCE(subscription_expires_at, now()), now()) + make_interval(days => $3),
	last_payment_tx_hash = $4,
	updated_at = now()
WHERE id = $1
RETURNING id, tier, subscription_expires_at, last_payment_tx_hash`

// ApplyConfirmedPayment records the payment and promotes the account inside a
// single transaction. The primary key on processed_payments.tx_hash is the
// replay guard: a hash that was already applied inserts zero rows, the
// transaction rolls back and the account is untouched.
func (repo *Repository) ApplyConfirmedPayment(ctx context.Context, params entity.ApplyPaymentParams) (*entity.Subscription, error) {
	tx, err := repo.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, insertProcessedPaymentSQL,
		params.TxHash,
		params.AccountID,
		params.Tier.String(),
		int64(params.ChainID),
		params.Amount.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record processed payment")
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.Wrapf(errs.Duplicate, "payment %s was already processed", params.TxHash)
	}

	var (
		sub  entity.Subscription
		tier string
	)
	err = tx.QueryRow(ctx, promoteAccountSQL,
		params.AccountID,
		params.Tier.String(),
		params.ValidityDays,
		params.TxHash,
	).Scan(&sub.AccountID, &tier, &sub.ExpiresAt, &sub.LastPaymentTxHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "account %s", params.AccountID)
		}
		return nil, errors.Wrap(err, "failed to promote account")
	}
	sub.Tier = payment.Tier(tier)

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit payment")
	}
	return &sub, nil
}
