package models

import "time"

// JoinRequestStatus is the state of a join request. Approved and rejected are terminal.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a user's pending request to associate with an organization.
type JoinRequest struct {
	JoinID    string            `dynamodbav:"join_id" json:"join_id"`
	Email     string            `dynamodbav:"email" json:"email"`
	Name      string            `dynamodbav:"name" json:"name"`
	TenantKey string            `dynamodbav:"client_name" json:"client_name"`
	Message   string            `dynamodbav:"message" json:"message"`
	Status    JoinRequestStatus `dynamodbav:"status" json:"status"`
	CreatedAt time.Time         `dynamodbav:"created_at" json:"created_at"`
	DecidedAt *time.Time        `dynamodbav:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedBy string            `dynamodbav:"decided_by,omitempty" json:"decided_by,omitempty"`
}

// JoinRequestID returns the composite key for a user-initiated request.
func JoinRequestID(email, tenantKey string) string {
	return email + ":" + tenantKey
}
