package store

import (
	"errors"
	"fmt"
)

// Base sentinels. Entity sentinels wrap one of these so callers can match
// either the specific or the generic condition with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrLimitReached  = errors.New("limit reached")
	ErrThrottled     = errors.New("AWS request throttled")
)

// Sentinel errors per entity.
var (
	ErrOrganizationNotFound      = fmt.Errorf("organization %w", ErrNotFound)
	ErrOrganizationAlreadyExists = fmt.Errorf("organization %w", ErrAlreadyExists)
	ErrUserNotFound              = fmt.Errorf("user %w", ErrNotFound)
	ErrUserAlreadyExists         = fmt.Errorf("user %w", ErrAlreadyExists)
	ErrJoinRequestNotFound       = fmt.Errorf("join request %w", ErrNotFound)
	ErrJoinRequestAlreadyExists  = fmt.Errorf("join request %w", ErrAlreadyExists)
	ErrSubscriptionNotFound      = fmt.Errorf("subscription %w", ErrNotFound)
	ErrSubscriptionAlreadyExists = fmt.Errorf("subscription %w", ErrAlreadyExists)
	ErrTierNotFound              = fmt.Errorf("tier %w", ErrNotFound)
	ErrTierAlreadyExists         = fmt.Errorf("tier %w", ErrAlreadyExists)
	ErrRoleNotFound              = fmt.Errorf("role %w", ErrNotFound)
)

// Stores groups the per-entity stores of one backend.
type Stores struct {
	Organizations OrganizationStore
	Users         UserStore
	JoinRequests  JoinRequestStore
	Subscriptions SubscriptionStore
	Tiers         TierStore
	Roles         RoleStore
}
