package server

import (
	"context"
	"errors"

	"github.com/wolfeidau/tenancy/internal/auth"
	"github.com/wolfeidau/tenancy/internal/store"
)

// StoreEnricher fills an identity from the stored membership. Active users
// get their role and the tier of their tenant's subscription; a role
// asserted by the identity provider is kept.
type StoreEnricher struct {
	users store.UserStore
	subs  store.SubscriptionStore
}

var _ auth.IdentityEnricher = (*StoreEnricher)(nil)

func NewStoreEnricher(stores *store.Stores) *StoreEnricher {
	return &StoreEnricher{users: stores.Users, subs: stores.Subscriptions}
}

func (e *StoreEnricher) Enrich(ctx context.Context, id *auth.Identity) error {
	if id.Email == "" {
		return nil
	}

	user, err := e.users.Get(ctx, id.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	id.TenantKey = user.TenantKey
	if id.Name == "" {
		id.Name = user.Name
	}

	if !user.IsActive() {
		return nil
	}
	if id.Role == "" {
		id.Role = string(user.Role)
	}

	sub, err := e.subs.Get(ctx, user.TenantKey)
	if errors.Is(err, store.ErrSubscriptionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	id.Tier = sub.Level

	return nil
}
