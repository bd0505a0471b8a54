package store

import (
	"context"

	"github.com/wolfeidau/tenancy/internal/models"
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations are keyed by tenant key.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if the tenant key is taken.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by tenant key.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, tenantKey string) (*models.Organization, error)

	// UpdateProfile merges the profile fields and display name of an existing organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	UpdateProfile(ctx context.Context, tenantKey, name string, profile models.Profile) error

	// AddAdmin adds identity to the admin set and removes it from the viewer set.
	// Repeating the call is a no-op.
	AddAdmin(ctx context.Context, tenantKey, identity string) error

	// AddViewer adds identity to the viewer set and removes it from the admin set.
	AddViewer(ctx context.Context, tenantKey, identity string) error

	// RemoveMember removes identity from both sets.
	RemoveMember(ctx context.Context, tenantKey, identity string) error

	// Delete deletes an organization by tenant key.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Delete(ctx context.Context, tenantKey string) error

	// List returns all organizations.
	List(ctx context.Context) ([]*models.Organization, error)

	// ListByMember returns organizations whose admin or viewer set contains identity.
	ListByMember(ctx context.Context, identity string) ([]*models.Organization, error)

	// ListByAdmin returns organizations whose admin set contains identity.
	ListByAdmin(ctx context.Context, identity string) ([]*models.Organization, error)

	// ListByLegalEntityMaster returns organizations whose legal-entity master is identity.
	ListByLegalEntityMaster(ctx context.Context, identity string) ([]*models.Organization, error)
}
