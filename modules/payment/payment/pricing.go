package payment

import (
	"math/big"

	"github.com/cockroachdb/errors"
)

// StablecoinDecimals is the number of decimals of the supported stablecoin.
// USDT uses 6 decimals on every supported chain.
const StablecoinDecimals = 6

// StablecoinSymbol is the display symbol of the supported stablecoin.
const StablecoinSymbol = "USDT"

// PricingEntry is the price of one subscription tier.
type PricingEntry struct {
	Tier Tier

	// AmountDue is the exact payment amount in the token's smallest unit.
	// Verification matches this with no tolerance.
	AmountDue *big.Int

	// ValidityDays is the subscription extension granted per payment.
	ValidityDays int
}

// PricingCatalog is a static tier price table. Read-only after construction.
type PricingCatalog struct {
	entries map[Tier]PricingEntry
	order   []Tier
}

// NewPricingCatalog builds a catalog from the given entries.
// Every entry must be a paid tier with a positive amount, and each tier may
// appear at most once.
func NewPricingCatalog(entries []PricingEntry) (*PricingCatalog, error) {
	catalog := &PricingCatalog{
		entries: make(map[Tier]PricingEntry, len(entries)),
		order:   make([]Tier, 0, len(entries)),
	}
	for _, entry := range entries {
		if !entry.Tier.IsPaid() {
			return nil, errors.Wrapf(ErrInvalidTier, "tier %q has no payment path", entry.Tier)
		}
		if entry.AmountDue == nil || entry.AmountDue.Sign() <= 0 {
			return nil, errors.Errorf("pricing for tier %q must have a positive amount", entry.Tier)
		}
		if entry.ValidityDays <= 0 {
			return nil, errors.Errorf("pricing for tier %q must have positive validity days", entry.Tier)
		}
		if _, ok := catalog.entries[entry.Tier]; ok {
			return nil, errors.Errorf("duplicate pricing entry for tier %q", entry.Tier)
		}
		catalog.entries[entry.Tier] = entry
		catalog.order = append(catalog.order, entry.Tier)
	}
	return catalog, nil
}

// AmountFor returns the pricing entry for a paid tier.
// Returns ErrInvalidTier for free or unknown tiers.
func (c *PricingCatalog) AmountFor(tier Tier) (PricingEntry, error) {
	entry, ok := c.entries[tier]
	if !ok {
		return PricingEntry{}, errors.Wrapf(ErrInvalidTier, "no pricing for tier %q", tier)
	}
	return entry, nil
}

// All returns every pricing entry in catalog order.
func (c *PricingCatalog) All() []PricingEntry {
	entries := make([]PricingEntry, 0, len(c.order))
	for _, tier := range c.order {
		entries = append(entries, c.entries[tier])
	}
	return entries
}

// DefaultPricingEntries is the reference deployment price table:
// 49 USDT / 30 days for recommended, 199 USDT / 30 days for premium.
func DefaultPricingEntries() []PricingEntry {
	return []PricingEntry{
		{Tier: TierRecommended, AmountDue: big.NewInt(49_000_000), ValidityDays: 30},
		{Tier: TierPremium, AmountDue: big.NewInt(199_000_000), ValidityDays: 30},
	}
}
