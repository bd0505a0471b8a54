// Package memory provides in-memory implementations of the store interfaces
// for tests and local development.
package memory

import "github.com/wolfeidau/tenancy/internal/store"

// NewStores returns an empty set of in-memory stores.
func NewStores() *store.Stores {
	return &store.Stores{
		Organizations: NewOrganizationStore(),
		Users:         NewUserStore(),
		JoinRequests:  NewJoinRequestStore(),
		Subscriptions: NewSubscriptionStore(),
		Tiers:         NewTierStore(),
		Roles:         NewRoleStore(),
	}
}
