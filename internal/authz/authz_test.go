package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tenancy/internal/auth"
	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
)

func TestAuthorize(t *testing.T) {
	org := &models.Organization{
		TenantKey: "acme_com",
		Admins:    []string{"sub-alice"},
		Viewers:   []string{"carol@acme.com"},
	}
	le := &models.Organization{
		TenantKey:         "LE_le_com_client_org",
		Admins:            []string{"sub-other"},
		LegalEntityMaster: "master@le.com",
		Type:              models.OrganizationTypeLegalEntity,
	}

	alice := auth.Identity{SubjectID: "sub-alice", Email: "alice@acme.com"}
	carol := auth.Identity{SubjectID: "sub-carol", Email: "carol@acme.com"}
	mallory := auth.Identity{SubjectID: "sub-mallory", Email: "mallory@evil.com"}
	master := auth.Identity{SubjectID: "sub-master", Email: "master@le.com"}
	platform := auth.Identity{SubjectID: "sub-ops", Email: "ops@vendor.com", Role: "platform_admin"}

	az := NewAuthorizer("platform_admin")

	tests := []struct {
		name       string
		id         auth.Identity
		org        *models.Organization
		capability Capability
		allowed    bool
	}{
		{name: "admin administers", id: alice, org: org, capability: AdministerOrg, allowed: true},
		{name: "admin views", id: alice, org: org, capability: ViewOrg, allowed: true},
		{name: "viewer matched by email views", id: carol, org: org, capability: ViewOrg, allowed: true},
		{name: "viewer cannot administer", id: carol, org: org, capability: AdministerOrg},
		{name: "outsider cannot view", id: mallory, org: org, capability: ViewOrg},
		{name: "le master administers", id: master, org: le, capability: AdministerOrg, allowed: true},
		{name: "le master views", id: master, org: le, capability: ViewOrg, allowed: true},
		{name: "platform admin is not an org admin", id: platform, org: org, capability: AdministerOrg},
		{name: "platform admin capability", id: platform, capability: PlatformAdmin, allowed: true},
		{name: "org admin is not platform admin", id: alice, org: org, capability: PlatformAdmin},
		{name: "anonymous denied", id: auth.Identity{}, org: org, capability: ViewOrg},
		{name: "nil org denied", id: alice, capability: ViewOrg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := az.Authorize(tt.id, tt.org, tt.capability)
			if tt.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errdefs.ErrForbidden)
			assert.Contains(t, err.Error(), "requires="+string(tt.capability))
			assert.Equal(t, tt.allowed, az.Allowed(tt.id, tt.org, tt.capability))
		})
	}
}

func TestPlatformAdminByGroup(t *testing.T) {
	var az Authorizer
	id := auth.Identity{Email: "ops@vendor.com", Groups: []string{DefaultPlatformAdminRole}}
	require.NoError(t, az.RequirePlatformAdmin(id))

	custom := NewAuthorizer("superuser")
	require.ErrorIs(t, custom.RequirePlatformAdmin(id), errdefs.ErrForbidden)
}

func TestRequireAnyRole(t *testing.T) {
	admin := auth.Identity{Email: "a@acme.com", Role: "admin", Tier: models.TierL1}
	viewer := auth.Identity{Email: "v@acme.com", Role: "viewer", Tier: models.TierL1}
	leAdmin := auth.Identity{Email: "m@le.com", Role: "viewer", Tier: models.TierLE}

	require.NoError(t, RequireAnyRole(admin, RoleAdmin))
	require.NoError(t, RequireAnyRole(viewer, RoleAdmin, RoleViewer))
	require.NoError(t, RequireAnyRole(leAdmin, RoleLEAdmin))
	require.NoError(t, RequireAnyRole(viewer))

	err := RequireAnyRole(viewer, RoleAdmin, RoleLEAdmin)
	require.ErrorIs(t, err, errdefs.ErrForbidden)
	assert.Contains(t, err.Error(), "admin|LE_ADMIN")

	require.ErrorIs(t, RequireAnyRole(admin, RoleLEAdmin), errdefs.ErrForbidden)
}
