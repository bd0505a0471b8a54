package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// TierStore implements store.TierStore using in-memory storage.
type TierStore struct {
	mu    sync.RWMutex
	tiers map[models.TierCode]*models.Tier
}

func NewTierStore() *TierStore {
	return &TierStore{tiers: make(map[models.TierCode]*models.Tier)}
}

func (s *TierStore) Create(ctx context.Context, tier *models.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiers[tier.Code]; exists {
		return store.ErrTierAlreadyExists
	}
	s.tiers[tier.Code] = tier.Clone()

	return nil
}

func (s *TierStore) Put(ctx context.Context, tier *models.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tiers[tier.Code] = tier.Clone()

	return nil
}

func (s *TierStore) Get(ctx context.Context, code models.TierCode) (*models.Tier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tier, exists := s.tiers[code]
	if !exists {
		return nil, store.ErrTierNotFound
	}

	return tier.Clone(), nil
}

// List returns tiers in rank order.
func (s *TierStore) List(ctx context.Context) ([]*models.Tier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Tier, 0, len(s.tiers))
	for _, tier := range s.tiers {
		result = append(result, tier.Clone())
	}
	models.SortTiers(result)

	return result, nil
}

func (s *TierStore) Delete(ctx context.Context, code models.TierCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiers[code]; !exists {
		return store.ErrTierNotFound
	}
	delete(s.tiers, code)

	return nil
}

// RoleStore implements store.RoleStore using in-memory storage.
type RoleStore struct {
	mu    sync.RWMutex
	roles map[string]*models.RoleDefinition
}

func NewRoleStore() *RoleStore {
	return &RoleStore{roles: make(map[string]*models.RoleDefinition)}
}

func (s *RoleStore) Put(ctx context.Context, role *models.RoleDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[role.RoleID] = role.Clone()

	return nil
}

func (s *RoleStore) Get(ctx context.Context, roleID string) (*models.RoleDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, exists := s.roles[roleID]
	if !exists {
		return nil, store.ErrRoleNotFound
	}

	return role.Clone(), nil
}

func (s *RoleStore) List(ctx context.Context) ([]*models.RoleDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.RoleDefinition, 0, len(s.roles))
	for _, role := range s.roles {
		result = append(result, role.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RoleID < result[j].RoleID })

	return result, nil
}

func (s *RoleStore) Delete(ctx context.Context, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.roles[roleID]; !exists {
		return store.ErrRoleNotFound
	}
	delete(s.roles, roleID)

	return nil
}
