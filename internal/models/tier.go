package models

import (
	"slices"
	"strings"
)

// TierCode identifies a subscription tier.
type TierCode string

const (
	TierL0 TierCode = "L0"
	TierL1 TierCode = "L1"
	TierL2 TierCode = "L2"
	TierL3 TierCode = "L3"
	TierLE TierCode = "LE"
)

// Unlimited encodes an infinite limit.
const Unlimited int64 = -1

// Tier is a row of the tier catalogue.
type Tier struct {
	Code                     TierCode `dynamodbav:"sub_level" json:"sub_level" yaml:"code"`
	Name                     string   `dynamodbav:"name" json:"name" yaml:"name"`
	Description              string   `dynamodbav:"description,omitempty" json:"description,omitempty" yaml:"description"`
	MaxEdits                 int64    `dynamodbav:"max_edits" json:"max_edits" yaml:"max_edits"`
	MaxApps                  int64    `dynamodbav:"max_apps" json:"max_apps" yaml:"max_apps"`
	RunQuota                 int64    `dynamodbav:"run_quota" json:"run_quota" yaml:"run_quota"`
	AllowedTabs              []string `dynamodbav:"allowed_tabs" json:"allowed_tabs" yaml:"allowed_tabs"`
	PriceMonthly             float64  `dynamodbav:"price_monthly,omitempty" json:"price_monthly,omitempty" yaml:"price_monthly"`
	PriceOneTimeRegistration float64  `dynamodbav:"price_onetime_registration,omitempty" json:"price_onetime_registration,omitempty" yaml:"price_onetime_registration"`
}

// Rank orders tier codes L0 < L1 < L2 < L3 < LE. Unknown codes rank -1.
func (c TierCode) Rank() int {
	switch c {
	case TierL0:
		return 0
	case TierL1:
		return 1
	case TierL2:
		return 2
	case TierL3:
		return 3
	case TierLE:
		return 4
	}
	return -1
}

// IsUnlimited reports whether limit encodes infinity.
func IsUnlimited(limit int64) bool {
	return limit < 0
}

// SortTiers orders tiers by rank, then by code for unknown codes.
func SortTiers(tiers []*Tier) {
	slices.SortFunc(tiers, func(a, b *Tier) int {
		if a.Code.Rank() != b.Code.Rank() {
			return a.Code.Rank() - b.Code.Rank()
		}
		return strings.Compare(string(a.Code), string(b.Code))
	})
}

// Clone returns a deep copy.
func (t *Tier) Clone() *Tier {
	c := *t
	c.AllowedTabs = slices.Clone(t.AllowedTabs)
	return &c
}

// DefaultTiers returns the built-in catalogue.
func DefaultTiers() []*Tier {
	return []*Tier{
		{Code: TierL0, Name: "Free", MaxEdits: 0, MaxApps: 0, RunQuota: 0, AllowedTabs: []string{}},
		{Code: TierL1, Name: "Basic", MaxEdits: 1, MaxApps: 1, RunQuota: 1, AllowedTabs: []string{"Basic"}},
		{Code: TierL2, Name: "Standard", MaxEdits: 2, MaxApps: 2, RunQuota: 2, AllowedTabs: []string{"ISM", "E8"}},
		{Code: TierL3, Name: "Advanced", MaxEdits: 3, MaxApps: 5, RunQuota: 3, AllowedTabs: []string{"ISM", "E8", "Detections"}},
		{Code: TierLE, Name: "Legal Entity", MaxEdits: Unlimited, MaxApps: Unlimited, RunQuota: Unlimited, AllowedTabs: []string{"ISM", "E8", "Detections"}},
	}
}
