package models

import (
	"slices"
	"time"
)

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Action is a metered operation counted against a subscription.
type Action string

const (
	ActionAddApp Action = "addApp"
	ActionEdit   Action = "edit"
	ActionRun    Action = "run"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionAddApp, ActionEdit, ActionRun:
		return true
	}
	return false
}

// Counter returns the attribute name of the usage counter for the action.
func (a Action) Counter() string {
	switch a {
	case ActionAddApp:
		return "apps_count"
	case ActionEdit:
		return "edit_count"
	case ActionRun:
		return "run_number"
	}
	return ""
}

// LimitField returns the attribute name of the limit the action is checked against.
func (a Action) LimitField() string {
	switch a {
	case ActionAddApp:
		return "max_apps"
	case ActionEdit:
		return "max_edits"
	case ActionRun:
		return "run_quota"
	}
	return ""
}

// Subscription is an organization's tier assignment plus its usage counters.
// Limits are snapshotted from the tier at creation or explicit tier change.
type Subscription struct {
	TenantKey         string    `dynamodbav:"client_name" json:"client_name"`
	Level             TierCode  `dynamodbav:"subscription_level" json:"subscription_level"`
	RunNumber         int64     `dynamodbav:"run_number" json:"run_number"`
	RunQuota          int64     `dynamodbav:"run_quota" json:"run_quota"`
	MaxEdits          int64     `dynamodbav:"max_edits" json:"max_edits"`
	EditCount         int64     `dynamodbav:"edit_count" json:"edit_count"`
	MaxApps           int64     `dynamodbav:"max_apps" json:"max_apps"`
	AppsCount         int64     `dynamodbav:"apps_count" json:"apps_count"`
	FeaturesAccess    []string  `dynamodbav:"features_access" json:"features_access"`
	PaymentStatus     string    `dynamodbav:"payment_status" json:"payment_status"`
	Progress          int64     `dynamodbav:"progress" json:"progress"`
	LegalEntityMaster string    `dynamodbav:"le_master,omitempty" json:"le_master,omitempty"`
	CreatedAt         time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt         time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// NewSubscription snapshots the limits of tier for tenantKey with zeroed counters.
func NewSubscription(tenantKey string, tier *Tier, now time.Time) *Subscription {
	s := &Subscription{
		TenantKey:     tenantKey,
		PaymentStatus: PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.ApplyTier(tier)
	return s
}

// ApplyTier overwrites the level and snapshotted limits. Counters are kept.
func (s *Subscription) ApplyTier(tier *Tier) {
	s.Level = tier.Code
	s.RunQuota = tier.RunQuota
	s.MaxEdits = tier.MaxEdits
	s.MaxApps = tier.MaxApps
	s.FeaturesAccess = slices.Clone(tier.AllowedTabs)
}

// Usage returns the counter and limit for the action.
func (s *Subscription) Usage(a Action) (used, limit int64) {
	switch a {
	case ActionAddApp:
		return s.AppsCount, s.MaxApps
	case ActionEdit:
		return s.EditCount, s.MaxEdits
	case ActionRun:
		return s.RunNumber, s.RunQuota
	}
	return 0, 0
}

// HasFeature reports whether feature is in the snapshotted feature set.
func (s *Subscription) HasFeature(feature string) bool {
	return slices.Contains(s.FeaturesAccess, feature)
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	c := *s
	c.FeaturesAccess = slices.Clone(s.FeaturesAccess)
	return &c
}
