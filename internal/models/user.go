package models

import "time"

// Role is a user's role within the organization they are provisioned against.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
	RoleRunner Role = "runner"
)

// Valid reports whether r is an assignable organization role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleViewer, RoleRunner:
		return true
	}
	return false
}

// UserStatus is the membership lifecycle state.
type UserStatus string

const (
	UserStatusPendingApproval UserStatus = "pending_approval"
	UserStatusActive          UserStatus = "active"
)

// User is a user's membership record, keyed by email.
type User struct {
	Email       string     `dynamodbav:"email" json:"email"`
	Name        string     `dynamodbav:"name" json:"name"`
	TenantKey   string     `dynamodbav:"client_name" json:"client_name"`
	Role        Role       `dynamodbav:"role" json:"role"`
	Status      UserStatus `dynamodbav:"status" json:"status"`
	SubjectID   string     `dynamodbav:"subject_id,omitempty" json:"subject_id,omitempty"`
	PartnerCode string     `dynamodbav:"partner_code,omitempty" json:"partner_code,omitempty"`
	CreatedAt   time.Time  `dynamodbav:"created_at" json:"created_at"`
}

// IsActive returns true once the membership has been approved.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IdentityID returns the identity string used in organization admin/viewer sets.
func (u *User) IdentityID() string {
	if u.SubjectID != "" {
		return u.SubjectID
	}
	return u.Email
}
