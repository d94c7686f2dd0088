package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/datagateway"
	"github.com/auditforge/paygate/modules/payment/internal/entity"
	"github.com/auditforge/paygate/modules/payment/payment"
	"github.com/auditforge/paygate/pkg/metrics"
)

type Usecase struct {
	verifier       *payment.Verifier
	subscriptionDg datagateway.SubscriptionDataGateway
	pricing        *payment.PricingCatalog
	networks       *payment.ChainRegistry
	treasury       payment.Address
	metrics        metrics.Recorder
}

func New(
	verifier *payment.Verifier,
	subscriptionDg datagateway.SubscriptionDataGateway,
	pricing *payment.PricingCatalog,
	networks *payment.ChainRegistry,
	treasury payment.Address,
	recorder metrics.Recorder,
) *Usecase {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Usecase{
		verifier:       verifier,
		subscriptionDg: subscriptionDg,
		pricing:        pricing,
		networks:       networks,
		treasury:       treasury,
		metrics:        recorder,
	}
}

// Pricing returns the full tier price table.
func (u *Usecase) Pricing() []payment.PricingEntry {
	return u.pricing.All()
}

// PricingFor returns the pricing entry for one paid tier.
func (u *Usecase) PricingFor(tier payment.Tier) (payment.PricingEntry, error) {
	return u.pricing.AmountFor(tier)
}

// Networks returns the supported chain catalog.
func (u *Usecase) Networks() []payment.Chain {
	return u.networks.All()
}

// Treasury returns the treasury address payments must be sent to.
func (u *Usecase) Treasury() payment.Address {
	return u.treasury
}

// GetSubscription returns the current subscription state of an account.
func (u *Usecase) GetSubscription(ctx context.Context, accountID uuid.UUID) (*entity.Subscription, error) {
	sub, err := u.subscriptionDg.GetSubscription(ctx, accountID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.WithStack(err)
		}
		return nil, errors.Wrap(err, "failed to get subscription")
	}
	return sub, nil
}
