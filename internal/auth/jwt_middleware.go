package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// KeySource resolves signing keys by kid.
type KeySource interface {
	GetKey(ctx context.Context, jwksURL, kid string) (any, error)
}

// IdentityEnricher fills in the stored role and subscription tier of a caller.
type IdentityEnricher interface {
	Enrich(ctx context.Context, id *Identity) error
}

// JWTVerifier validates identity provider tokens against a JWKS endpoint.
type JWTVerifier struct {
	issuer   string
	clientID string
	jwksURL  string
	keys     KeySource
}

// NewJWTVerifier creates a verifier for tokens issued by issuer to clientID.
// Keys are fetched from <issuer>/.well-known/jwks.json.
func NewJWTVerifier(issuer, clientID string, keys KeySource) *JWTVerifier {
	return &JWTVerifier{
		issuer:   issuer,
		clientID: clientID,
		jwksURL:  strings.TrimSuffix(issuer, "/") + "/.well-known/jwks.json",
		keys:     keys,
	}
}

// CognitoIssuer returns the issuer URL of a Cognito user pool.
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// Verify checks signature, issuer, expiry, token_use and audience/client_id.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing kid")
		}
		return v.keys.GetKey(ctx, v.jwksURL, kid)
	},
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	claims := &Claims{Custom: map[string]any(mc)}
	claims.Subject, _ = mc.GetSubject()
	claims.Email, _ = mc["email"].(string)
	claims.Name, _ = mc["name"].(string)
	claims.TokenUse, _ = mc["token_use"].(string)
	claims.ClientID, _ = mc["client_id"].(string)
	if aud, err := mc.GetAudience(); err == nil {
		claims.Audience = aud
	}

	if claims.TokenUse != "id" && claims.TokenUse != "access" {
		return nil, fmt.Errorf("%w: invalid token use %q", ErrInvalidToken, claims.TokenUse)
	}
	if !slices.Contains(claims.Audience, v.clientID) && claims.ClientID != v.clientID {
		return nil, fmt.Errorf("%w: invalid audience/client_id", ErrInvalidToken)
	}

	return claims, nil
}

// Middleware returns an HTTP middleware that verifies bearer tokens and
// stores the enriched identity on the request context.
func (v *JWTVerifier) Middleware(enricher IdentityEnricher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				log.Warn().Msg("Missing Authorization header")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()

			claims, err := v.Verify(ctx, tokenString)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to verify JWT")
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			id := IdentityFromClaims(claims)
			if err := enrich(ctx, enricher, &id); err != nil {
				http.Error(w, "identity lookup failed", http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

func enrich(ctx context.Context, enricher IdentityEnricher, id *Identity) error {
	if enricher == nil {
		return nil
	}
	if err := enricher.Enrich(ctx, id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("email", id.Email).Msg("failed to enrich identity")
		return err
	}
	return nil
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}

// parseStringSlice extracts a string slice from JWT claims.
func parseStringSlice(claims map[string]any, key string) ([]string, error) {
	value, ok := claims[key]
	if !ok {
		return nil, fmt.Errorf("missing %s claim", key)
	}

	// Handle both []interface{} and []string
	switch v := value.(type) {
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid %s claim: expected string array", key)
			}
			result[i] = str
		}
		return result, nil
	case []string:
		return v, nil
	default:
		return nil, fmt.Errorf("invalid %s claim: expected array", key)
	}
}
