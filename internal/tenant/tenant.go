// Package tenant derives canonical tenant keys from email addresses and
// organization domains.
package tenant

import (
	"strings"
	"unicode"

	"github.com/wolfeidau/tenancy/internal/errdefs"
)

// LegalEntityPrefix starts every legal-entity tenant key. Standard keys are
// lower-case so they can never carry it.
const LegalEntityPrefix = "LE_"

// DefaultGenericDomains lists consumer webmail providers that cannot own a tenant.
var DefaultGenericDomains = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"aol.com",
	"icloud.com",
	"mail.com",
	"protonmail.com",
	"gmx.com",
	"yandex.com",
	"zoho.com",
	"msn.com",
	"live.com",
}

// Resolver maps emails and domains to tenant keys.
type Resolver struct {
	generic map[string]struct{}
}

// NewResolver returns a resolver rejecting the given generic domains. An
// empty list falls back to DefaultGenericDomains.
func NewResolver(genericDomains []string) *Resolver {
	if len(genericDomains) == 0 {
		genericDomains = DefaultGenericDomains
	}
	r := &Resolver{generic: make(map[string]struct{}, len(genericDomains))}
	for _, d := range genericDomains {
		r.generic[normalizeDomain(d)] = struct{}{}
	}
	return r
}

// ResolveTenant returns the tenant key for email.
func (r *Resolver) ResolveTenant(email string) (string, error) {
	domain, err := EmailDomain(email)
	if err != nil {
		return "", err
	}
	return r.TenantFromDomain(domain)
}

// TenantFromDomain returns the tenant key for an organization domain.
func (r *Resolver) TenantFromDomain(domain string) (string, error) {
	domain = normalizeDomain(domain)
	if !validDomain(domain) {
		return "", errdefs.InvalidEmailDomain(domain, "malformed domain")
	}
	if r.IsGeneric(domain) {
		return "", errdefs.InvalidEmailDomain(domain, "generic email providers cannot register an organization")
	}
	return keyFor(domain), nil
}

// IsGeneric reports whether domain is on the deny-list.
func (r *Resolver) IsGeneric(domain string) bool {
	_, ok := r.generic[normalizeDomain(domain)]
	return ok
}

// ResolveLegalEntityTenant returns the composite key LE_<le>_<org> for an
// organization provisioned under a legal entity.
func ResolveLegalEntityTenant(leDomain, orgDomain string) string {
	return LegalEntityPrefix + keyFor(normalizeDomain(leDomain)) + "_" + keyFor(normalizeDomain(orgDomain))
}

// IsLegalEntityTenant reports whether key was built by ResolveLegalEntityTenant.
func IsLegalEntityTenant(key string) bool {
	return strings.HasPrefix(key, LegalEntityPrefix)
}

// EmailDomain returns the lower-cased domain after the last '@'.
func EmailDomain(email string) (string, error) {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", errdefs.InvalidEmailDomain(email, "malformed email address")
	}
	return normalizeDomain(email[at+1:]), nil
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

func keyFor(domain string) string {
	return strings.ReplaceAll(domain, ".", "_")
}

// validDomain accepts dot separated hostname labels of letters, digits and
// hyphens. Underscores are rejected so keyFor stays injective.
func validDomain(domain string) bool {
	if domain == "" {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, c := range label {
			if c != '-' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				return false
			}
		}
	}
	return true
}
