package errdefs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wolfeidau/tenancy/internal/store"
)

// Sentinel errors for the tenancy core. Callers match with errors.Is.
var (
	ErrInvalidEmailDomain    = errors.New("invalid email domain")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrJoinRequestNotFound   = errors.New("join request not found")
	ErrTierNotFound          = errors.New("tier not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrRoleNotFound          = errors.New("role not found")
	ErrForbidden             = errors.New("forbidden")
	ErrQuotaExceeded         = errors.New("quota exceeded")
	ErrDuplicateOrganization = errors.New("organization already exists")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)

// Error carries the failure kind along with enough context for the caller to
// self-diagnose: the entity key, the capability that was required or the
// limit that was hit.
type Error struct {
	Kind       error
	Key        string
	Capability string
	Limit      string
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	var parts []string
	if e.Key != "" {
		parts = append(parts, "key="+e.Key)
	}
	if e.Capability != "" {
		parts = append(parts, "requires="+e.Capability)
	}
	if e.Limit != "" {
		parts = append(parts, "limit="+e.Limit)
	}
	if len(parts) > 0 {
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidEmailDomain is returned for malformed or generic (non-business) email domains.
func InvalidEmailDomain(domain, detail string) error {
	return &Error{Kind: ErrInvalidEmailDomain, Key: domain, Detail: detail}
}

// InvalidArgument reports a malformed request value.
func InvalidArgument(detail string) error {
	return &Error{Kind: ErrInvalidArgument, Detail: detail}
}

// NotFound builds a missing-entity error of the given kind.
func NotFound(kind error, key string) error {
	return &Error{Kind: kind, Key: key}
}

// Forbidden reports an authorization denial.
func Forbidden(key, capability, detail string) error {
	return &Error{Kind: ErrForbidden, Key: key, Capability: capability, Detail: detail}
}

// QuotaExceeded reports that a tier limit has been reached for a tenant.
func QuotaExceeded(tenantKey, limit string, used, max int64) error {
	return &Error{
		Kind:   ErrQuotaExceeded,
		Key:    tenantKey,
		Limit:  limit,
		Detail: fmt.Sprintf("%d of %d used", used, max),
	}
}

// DuplicateOrganization reports a tenant key collision on creation.
func DuplicateOrganization(tenantKey string) error {
	return &Error{Kind: ErrDuplicateOrganization, Key: tenantKey}
}

// StorageUnavailable wraps a transient infrastructure fault.
func StorageUnavailable(op string, err error) error {
	return &Error{Kind: ErrStorageUnavailable, Detail: op, Err: err}
}

// FromStore translates a storage error into the taxonomy. Missing records
// become kind with key attached, create collisions on organizations or
// subscriptions become DuplicateOrganization, and anything else is treated
// as a transient storage fault.
func FromStore(err error, kind error, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: kind, Key: key, Err: err}
	case errors.Is(err, store.ErrOrganizationAlreadyExists), errors.Is(err, store.ErrSubscriptionAlreadyExists):
		return &Error{Kind: ErrDuplicateOrganization, Key: key, Err: err}
	case errors.Is(err, store.ErrAlreadyExists):
		return &Error{Kind: ErrInvalidArgument, Key: key, Detail: "already exists", Err: err}
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: ErrStorageUnavailable, Key: key, Err: err}
}

// Kind returns the sentinel kind of err, or nil when err is not one of ours.
func Kind(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

var kinds = []error{
	ErrInvalidEmailDomain,
	ErrInvalidArgument,
	ErrOrganizationNotFound,
	ErrJoinRequestNotFound,
	ErrTierNotFound,
	ErrUserNotFound,
	ErrSubscriptionNotFound,
	ErrRoleNotFound,
	ErrForbidden,
	ErrQuotaExceeded,
	ErrDuplicateOrganization,
	ErrStorageUnavailable,
}
