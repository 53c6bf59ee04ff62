package domain

import "strings"

// BoostTier identifies a purchasable boost package
type BoostTier string

const (
	TierBasic    BoostTier = "basic"
	TierStandard BoostTier = "standard"
	TierPremium  BoostTier = "premium"
)

// DefaultTier is used when the client sends no tier or an unknown one
const DefaultTier = TierStandard

// TierPlan is the resolved price and duration of a tier.
// Prices are in the currency's minor unit (kobo for NGN).
type TierPlan struct {
	Tier            BoostTier
	PriceMinorUnits int64
	Days            int
	DisplayName     string
}

var tierPlans = map[BoostTier]TierPlan{
	TierBasic:    {Tier: TierBasic, PriceMinorUnits: 150000, Days: 3, DisplayName: "3-Day Basic Boost"},
	TierStandard: {Tier: TierStandard, PriceMinorUnits: 300000, Days: 7, DisplayName: "7-Day Standard Boost"},
	TierPremium:  {Tier: TierPremium, PriceMinorUnits: 450000, Days: 14, DisplayName: "14-Day Premium Boost"},
}

// Valid reports whether t is a known tier
func (t BoostTier) Valid() bool {
	_, ok := tierPlans[t]
	return ok
}

// LookupTier returns the plan for value and whether value named a known tier
func LookupTier(value string) (TierPlan, bool) {
	tier := BoostTier(strings.TrimSpace(value))
	if !tier.Valid() {
		return TierPlan{}, false
	}
	return tierPlans[tier], true
}

// ResolveTier returns the plan for value, falling back to the standard tier
func ResolveTier(value string) TierPlan {
	if plan, ok := LookupTier(value); ok {
		return plan
	}
	return tierPlans[DefaultTier]
}
