package store

import (
	"context"

	"github.com/wolfeidau/tenancy/internal/models"
)

// UserStore persists user memberships keyed by email.
type UserStore interface {
	// Create returns ErrUserAlreadyExists if a membership for the email exists.
	Create(ctx context.Context, user *models.User) error

	// Get returns ErrUserNotFound if the email is unknown.
	Get(ctx context.Context, email string) (*models.User, error)

	// Activate sets status active and the given role. The write is an
	// unconditional set so repeating it is safe.
	Activate(ctx context.Context, email string, role models.Role) error

	// SetRole changes the role of an existing membership.
	SetRole(ctx context.Context, email string, role models.Role) error

	// Delete returns ErrUserNotFound if the email is unknown.
	Delete(ctx context.Context, email string) error

	// ListByTenant returns all memberships provisioned against tenantKey.
	ListByTenant(ctx context.Context, tenantKey string) ([]*models.User, error)
}

// JoinRequestStore persists join requests keyed by join id.
type JoinRequestStore interface {
	// Create returns ErrJoinRequestAlreadyExists if the join id is taken.
	Create(ctx context.Context, req *models.JoinRequest) error

	// Get returns ErrJoinRequestNotFound if the join id is unknown.
	Get(ctx context.Context, joinID string) (*models.JoinRequest, error)

	// Put stores req unconditionally, replacing any request with the same join id.
	Put(ctx context.Context, req *models.JoinRequest) error

	// SetStatus records a decision. The write is an unconditional set.
	SetStatus(ctx context.Context, joinID string, status models.JoinRequestStatus, decidedBy string) error

	// ListByTenant returns requests for tenantKey, filtered by status when non-empty.
	ListByTenant(ctx context.Context, tenantKey string, status models.JoinRequestStatus) ([]*models.JoinRequest, error)
}
