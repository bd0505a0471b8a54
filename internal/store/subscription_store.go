package store

import (
	"context"

	"github.com/wolfeidau/tenancy/internal/models"
)

// SubscriptionStore persists subscriptions keyed by tenant key.
type SubscriptionStore interface {
	// Create returns ErrSubscriptionAlreadyExists if the tenant already has one.
	Create(ctx context.Context, sub *models.Subscription) error

	// Get returns ErrSubscriptionNotFound if the tenant has none.
	Get(ctx context.Context, tenantKey string) (*models.Subscription, error)

	// Update replaces the limits, level, payment status and progress of an
	// existing subscription. Usage counters are left untouched.
	Update(ctx context.Context, sub *models.Subscription) error

	// Delete returns ErrSubscriptionNotFound if the tenant has none.
	Delete(ctx context.Context, tenantKey string) error

	// Increment atomically adds by to the counter for action and returns the new value.
	Increment(ctx context.Context, tenantKey string, action models.Action, by int64) (int64, error)

	// IncrementIfBelow atomically adds one to the counter for action only if
	// the counter is below its limit or the limit is unlimited. Returns
	// ErrLimitReached when the precondition fails.
	IncrementIfBelow(ctx context.Context, tenantKey string, action models.Action) (int64, error)
}

// TierStore persists the tier catalogue keyed by tier code.
type TierStore interface {
	// Create returns ErrTierAlreadyExists if the code is taken.
	Create(ctx context.Context, tier *models.Tier) error

	// Put inserts or replaces a tier.
	Put(ctx context.Context, tier *models.Tier) error

	// Get returns ErrTierNotFound if the code is unregistered.
	Get(ctx context.Context, code models.TierCode) (*models.Tier, error)

	List(ctx context.Context) ([]*models.Tier, error)

	// Delete returns ErrTierNotFound if the code is unregistered.
	Delete(ctx context.Context, code models.TierCode) error
}

// RoleStore persists the platform role catalogue keyed by role id.
type RoleStore interface {
	Put(ctx context.Context, role *models.RoleDefinition) error

	// Get returns ErrRoleNotFound if the id is unknown.
	Get(ctx context.Context, roleID string) (*models.RoleDefinition, error)

	List(ctx context.Context) ([]*models.RoleDefinition, error)

	// Delete returns ErrRoleNotFound if the id is unknown.
	Delete(ctx context.Context, roleID string) error
}
