package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DebugEmailHeader = "X-Debug-Email"
	DebugSubHeader   = "X-Debug-Sub"
	DebugRoleHeader  = "X-Debug-Role"
)

// DevMiddleware trusts identity headers instead of verifying a token.
// It must only be enabled for local development.
func DevMiddleware(enricher IdentityEnricher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.TrimSpace(r.Header.Get(DebugEmailHeader))
			if email == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()

			id := IdentityFromClaims(&Claims{
				Subject: r.Header.Get(DebugSubHeader),
				Email:   email,
			})
			if err := enrich(ctx, enricher, &id); err != nil {
				http.Error(w, "identity lookup failed", http.StatusServiceUnavailable)
				return
			}
			if role := r.Header.Get(DebugRoleHeader); role != "" {
				id.Role = role
			}

			log.Debug().Str("email", id.Email).Str("role", id.Role).Msg("Dev auth: header identity")

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}
