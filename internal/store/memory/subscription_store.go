package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// SubscriptionStore implements store.SubscriptionStore using in-memory storage.
// Counter updates hold the write lock so IncrementIfBelow is atomic.
type SubscriptionStore struct {
	mu sync.RWMutex

	subscriptions map[string]*models.Subscription // tenant_key -> Subscription
}

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{subscriptions: make(map[string]*models.Subscription)}
}

func (s *SubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.TenantKey]; exists {
		return store.ErrSubscriptionAlreadyExists
	}
	s.subscriptions[sub.TenantKey] = sub.Clone()

	return nil
}

func (s *SubscriptionStore) Get(ctx context.Context, tenantKey string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subscriptions[tenantKey]
	if !exists {
		return nil, store.ErrSubscriptionNotFound
	}

	return sub.Clone(), nil
}

func (s *SubscriptionStore) Update(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.subscriptions[sub.TenantKey]
	if !exists {
		return store.ErrSubscriptionNotFound
	}

	clone := sub.Clone()
	clone.RunNumber = existing.RunNumber
	clone.EditCount = existing.EditCount
	clone.AppsCount = existing.AppsCount
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now().UTC()
	s.subscriptions[sub.TenantKey] = clone

	return nil
}

func (s *SubscriptionStore) Delete(ctx context.Context, tenantKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[tenantKey]; !exists {
		return store.ErrSubscriptionNotFound
	}
	delete(s.subscriptions, tenantKey)

	return nil
}

func (s *SubscriptionStore) Increment(ctx context.Context, tenantKey string, action models.Action, by int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[tenantKey]
	if !exists {
		return 0, store.ErrSubscriptionNotFound
	}

	return add(sub, action, by), nil
}

func (s *SubscriptionStore) IncrementIfBelow(ctx context.Context, tenantKey string, action models.Action) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[tenantKey]
	if !exists {
		return 0, store.ErrSubscriptionNotFound
	}

	used, limit := sub.Usage(action)
	if !models.IsUnlimited(limit) && used >= limit {
		return used, store.ErrLimitReached
	}

	return add(sub, action, 1), nil
}

func add(sub *models.Subscription, action models.Action, by int64) int64 {
	var counter *int64
	switch action {
	case models.ActionAddApp:
		counter = &sub.AppsCount
	case models.ActionEdit:
		counter = &sub.EditCount
	default:
		counter = &sub.RunNumber
	}
	*counter += by
	return *counter
}
