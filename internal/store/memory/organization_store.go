package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wolfeidau/tenancy/internal/models"
	"github.com/wolfeidau/tenancy/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[string]*models.Organization // tenant_key -> Organization
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[string]*models.Organization),
	}
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.TenantKey]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	// Clone to avoid external modifications
	s.organizations[org.TenantKey] = org.Clone()

	return nil
}

// Get retrieves an organization by tenant key.
func (s *OrganizationStore) Get(ctx context.Context, tenantKey string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[tenantKey]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return org.Clone(), nil
}

// UpdateProfile merges the name and profile of an existing organization.
func (s *OrganizationStore) UpdateProfile(ctx context.Context, tenantKey, name string, profile models.Profile) error {
	return s.mutate(tenantKey, func(org *models.Organization) {
		if name != "" {
			org.Name = name
		}
		org.Profile = profile
	})
}

func (s *OrganizationStore) AddAdmin(ctx context.Context, tenantKey, identity string) error {
	return s.mutate(tenantKey, func(org *models.Organization) { org.AddAdmin(identity) })
}

func (s *OrganizationStore) AddViewer(ctx context.Context, tenantKey, identity string) error {
	return s.mutate(tenantKey, func(org *models.Organization) { org.AddViewer(identity) })
}

func (s *OrganizationStore) RemoveMember(ctx context.Context, tenantKey, identity string) error {
	return s.mutate(tenantKey, func(org *models.Organization) { org.RemoveIdentity(identity) })
}

func (s *OrganizationStore) mutate(tenantKey string, fn func(*models.Organization)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, exists := s.organizations[tenantKey]
	if !exists {
		return store.ErrOrganizationNotFound
	}
	fn(org)

	return nil
}

// Delete deletes an organization by tenant key.
func (s *OrganizationStore) Delete(ctx context.Context, tenantKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[tenantKey]; !exists {
		return store.ErrOrganizationNotFound
	}

	delete(s.organizations, tenantKey)

	return nil
}

func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	return s.filter(func(*models.Organization) bool { return true }), nil
}

func (s *OrganizationStore) ListByMember(ctx context.Context, identity string) ([]*models.Organization, error) {
	return s.filter(func(org *models.Organization) bool { return org.IsMember(identity) }), nil
}

func (s *OrganizationStore) ListByAdmin(ctx context.Context, identity string) ([]*models.Organization, error) {
	return s.filter(func(org *models.Organization) bool { return org.IsAdmin(identity) }), nil
}

func (s *OrganizationStore) ListByLegalEntityMaster(ctx context.Context, identity string) ([]*models.Organization, error) {
	return s.filter(func(org *models.Organization) bool {
		return identity != "" && org.LegalEntityMaster == identity
	}), nil
}

// filter returns clones of matching organizations ordered by tenant key.
func (s *OrganizationStore) filter(match func(*models.Organization) bool) []*models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Organization
	for _, org := range s.organizations {
		if match(org) {
			result = append(result, org.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TenantKey < result[j].TenantKey })

	return result
}
