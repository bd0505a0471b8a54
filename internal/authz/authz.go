// Package authz decides whether a caller may act on an organization.
// All functions are pure; denials are errdefs.ErrForbidden errors carrying
// the tenant key and the capability that was required.
package authz

import (
	"slices"
	"strings"

	"github.com/wolfeidau/tenancy/internal/auth"
	"github.com/wolfeidau/tenancy/internal/errdefs"
	"github.com/wolfeidau/tenancy/internal/models"
)

// Capability is an action class checked against an organization.
type Capability string

const (
	AdministerOrg Capability = "administerOrg"
	ViewOrg       Capability = "viewOrg"
	PlatformAdmin Capability = "platformAdmin"
)

// Named roles used by endpoint guards.
const (
	RoleAdmin   = "admin"
	RoleLEAdmin = "LE_ADMIN"
	RoleViewer  = "viewer"
)

// DefaultPlatformAdminRole is the reserved global role granting cross-tenant access.
const DefaultPlatformAdminRole = "platform_admin"

// Authorizer evaluates capabilities. The zero value uses DefaultPlatformAdminRole.
type Authorizer struct {
	PlatformAdminRole string
}

// NewAuthorizer returns an Authorizer for the given platform-admin role.
func NewAuthorizer(platformAdminRole string) *Authorizer {
	return &Authorizer{PlatformAdminRole: platformAdminRole}
}

func (a *Authorizer) platformRole() string {
	if a == nil || a.PlatformAdminRole == "" {
		return DefaultPlatformAdminRole
	}
	return a.PlatformAdminRole
}

// IsPlatformAdmin reports whether the caller holds the platform-admin role,
// either as its global role claim or as an identity provider group.
func (a *Authorizer) IsPlatformAdmin(id auth.Identity) bool {
	role := a.platformRole()
	return id.Role == role || id.HasGroup(role)
}

// Allowed reports whether id holds capability over org.
func (a *Authorizer) Allowed(id auth.Identity, org *models.Organization, capability Capability) bool {
	return a.Authorize(id, org, capability) == nil
}

// Authorize returns nil when id holds capability over org, a Forbidden error otherwise.
func (a *Authorizer) Authorize(id auth.Identity, org *models.Organization, capability Capability) error {
	if capability == PlatformAdmin {
		return a.RequirePlatformAdmin(id)
	}

	key := ""
	if org != nil {
		key = org.TenantKey
	}
	if id.IsAnonymous() {
		return errdefs.Forbidden(key, string(capability), "caller is not authenticated")
	}
	if org == nil {
		return errdefs.Forbidden(key, string(capability), "no organization in scope")
	}

	switch capability {
	case AdministerOrg:
		if isAdmin(id, org) || isLegalEntityMaster(id, org) {
			return nil
		}
		return errdefs.Forbidden(key, string(capability), "caller is not an admin of the organization")
	case ViewOrg:
		if isAdmin(id, org) || isViewer(id, org) || isLegalEntityMaster(id, org) {
			return nil
		}
		return errdefs.Forbidden(key, string(capability), "caller is not a member of the organization")
	}

	return errdefs.Forbidden(key, string(capability), "unknown capability")
}

// RequirePlatformAdmin returns Forbidden unless id is a platform admin.
func (a *Authorizer) RequirePlatformAdmin(id auth.Identity) error {
	if a.IsPlatformAdmin(id) {
		return nil
	}
	return errdefs.Forbidden("", string(PlatformAdmin), "only platform admins allowed")
}

// RequireAnyRole passes when id matches any named role: admin matches an
// admin membership role, LE_ADMIN a legal-entity tier classification and
// viewer a viewer membership role.
func RequireAnyRole(id auth.Identity, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if HasRole(id, role) {
			return nil
		}
	}
	return errdefs.Forbidden(id.TenantKey, strings.Join(roles, "|"), "insufficient permissions")
}

// HasRole evaluates a single named role.
func HasRole(id auth.Identity, role string) bool {
	switch role {
	case RoleAdmin:
		return id.Role == string(models.RoleAdmin)
	case RoleLEAdmin:
		return id.Tier == models.TierLE
	case RoleViewer:
		return id.Role == string(models.RoleViewer)
	}
	return false
}

func isAdmin(id auth.Identity, org *models.Organization) bool {
	return slices.ContainsFunc(org.Admins, id.Matches)
}

func isViewer(id auth.Identity, org *models.Organization) bool {
	return slices.ContainsFunc(org.Viewers, id.Matches)
}

func isLegalEntityMaster(id auth.Identity, org *models.Organization) bool {
	return org.LegalEntityMaster != "" && id.Matches(org.LegalEntityMaster)
}
