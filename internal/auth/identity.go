package auth

import (
	"context"
	"slices"
	"strings"

	"github.com/wolfeidau/tenancy/internal/models"
)

// Claims is the verified claim set handed over by the token verifier.
type Claims struct {
	Subject  string
	Email    string
	Name     string
	TokenUse string
	Audience []string
	ClientID string
	Custom   map[string]any
}

// Identity is the normalized caller identity used by authorization decisions.
// Role and Tier are filled from the stored membership and the tenant's
// subscription once the caller is known.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
	Role      string
	Tier      models.TierCode
	TenantKey string
	Groups    []string
}

// IdentityFromClaims normalizes a verified claim set.
func IdentityFromClaims(c *Claims) Identity {
	id := Identity{
		SubjectID: c.Subject,
		Email:     strings.ToLower(strings.TrimSpace(c.Email)),
		Name:      c.Name,
	}
	if role, ok := c.Custom["custom:role"].(string); ok {
		id.Role = role
	}
	if groups, err := parseStringSlice(c.Custom, "cognito:groups"); err == nil {
		id.Groups = groups
	}
	return id
}

// ID returns the identity string stored in organization admin/viewer sets.
func (i Identity) ID() string {
	if i.SubjectID != "" {
		return i.SubjectID
	}
	return i.Email
}

// Matches reports whether s refers to this caller by subject id or email.
func (i Identity) Matches(s string) bool {
	if s == "" {
		return false
	}
	return s == i.SubjectID || strings.EqualFold(s, i.Email)
}

// HasGroup reports whether the caller is in the named identity provider group.
func (i Identity) HasGroup(group string) bool {
	return slices.Contains(i.Groups, group)
}

// IsAnonymous returns true when no identity has been established.
func (i Identity) IsAnonymous() bool {
	return i.SubjectID == "" && i.Email == ""
}

type contextKey int

const (
	identityContextKey contextKey = iota
)

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
