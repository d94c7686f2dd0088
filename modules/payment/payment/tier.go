package payment

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrInvalidTier = errors.New("invalid subscription tier")

// Tier is a subscription level controlling audit quota and feature access.
// Tiers are totally ordered by capability: free < recommended < premium.
type Tier string

const (
	TierFree        Tier = "free"
	TierRecommended Tier = "recommended"
	TierPremium     Tier = "premium"
)

var tierRanks = map[Tier]int{
	TierFree:        0,
	TierRecommended: 1,
	TierPremium:     2,
}

// ParseTier parses a tier name case-insensitively.
// Returns ErrInvalidTier for unknown names.
func ParseTier(s string) (Tier, error) {
	tier := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierRanks[tier]; !ok {
		return "", errors.Wrapf(ErrInvalidTier, "unknown tier %q", s)
	}
	return tier, nil
}

// Rank returns the capability rank of the tier. Higher rank means more capability.
func (t Tier) Rank() int {
	return tierRanks[t]
}

// IsPaid reports whether the tier has a payment path.
func (t Tier) IsPaid() bool {
	return t == TierRecommended || t == TierPremium
}

func (t Tier) String() string {
	return string(t)
}
