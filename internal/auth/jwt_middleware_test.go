package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tenancy/internal/models"
)

const testClientID = "client-123"

type jwksServer struct {
	*httptest.Server
	key      *rsa.PrivateKey
	requests atomic.Int32
}

func newJWKSServer(t *testing.T) *jwksServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s := &jwksServer{key: key}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]any{{
				"kty": "RSA",
				"kid": "key-1",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *jwksServer) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(s.key)
	require.NoError(t, err)
	return signed
}

func (s *jwksServer) claims(overrides jwt.MapClaims) jwt.MapClaims {
	c := jwt.MapClaims{
		"iss":       s.URL,
		"sub":       "sub-bob",
		"email":     "Bob@Acme.com",
		"token_use": "id",
		"aud":       testClientID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(c, k)
			continue
		}
		c[k] = v
	}
	return c
}

func TestJWTVerifier_Verify(t *testing.T) {
	srv := newJWKSServer(t)
	v := NewJWTVerifier(srv.URL, testClientID, NewPublicKeyCache(srv.Client(), time.Minute))

	tests := []struct {
		name      string
		kid       string
		overrides jwt.MapClaims
		wantErr   error
	}{
		{name: "valid id token"},
		{name: "access token with client_id", overrides: jwt.MapClaims{"token_use": "access", "aud": nil, "client_id": testClientID}},
		{name: "expired", overrides: jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}, wantErr: ErrExpiredToken},
		{name: "wrong issuer", overrides: jwt.MapClaims{"iss": "https://evil.example.com"}, wantErr: ErrInvalidToken},
		{name: "wrong token use", overrides: jwt.MapClaims{"token_use": "refresh"}, wantErr: ErrInvalidToken},
		{name: "wrong audience", overrides: jwt.MapClaims{"aud": "someone-else"}, wantErr: ErrInvalidToken},
		{name: "unknown kid", kid: "key-2", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kid := tt.kid
			if kid == "" {
				kid = "key-1"
			}
			claims, err := v.Verify(context.Background(), srv.sign(t, kid, srv.claims(tt.overrides)))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sub-bob", claims.Subject)
		})
	}
}

func TestPublicKeyCache_CachesKeys(t *testing.T) {
	srv := newJWKSServer(t)
	cache := NewPublicKeyCache(srv.Client(), time.Minute)
	ctx := context.Background()

	for range 3 {
		key, err := cache.GetKey(ctx, srv.URL, "key-1")
		require.NoError(t, err)
		require.IsType(t, &rsa.PublicKey{}, key)
	}
	require.Equal(t, int32(1), srv.requests.Load())
}

type stubEnricher struct{}

func (stubEnricher) Enrich(ctx context.Context, id *Identity) error {
	id.Role = string(models.RoleAdmin)
	id.Tier = models.TierL1
	return nil
}

func TestJWTVerifier_Middleware(t *testing.T) {
	srv := newJWKSServer(t)
	v := NewJWTVerifier(srv.URL, testClientID, NewPublicKeyCache(srv.Client(), time.Minute))

	var got Identity
	handler := v.Middleware(stubEnricher{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orgs", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orgs", nil)
		req.Header.Set("Authorization", "Bearer "+srv.sign(t, "key-1", srv.claims(nil)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "bob@acme.com", got.Email)
		assert.Equal(t, "sub-bob", got.ID())
		assert.Equal(t, "admin", got.Role)
		assert.Equal(t, models.TierL1, got.Tier)
	})
}

func TestIdentityFromClaims(t *testing.T) {
	id := IdentityFromClaims(&Claims{
		Subject: "sub-1",
		Email:   " Alice@Example.COM ",
		Custom: map[string]any{
			"custom:role":    "platform_admin",
			"cognito:groups": []any{"ops", "billing"},
		},
	})

	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "platform_admin", id.Role)
	assert.True(t, id.HasGroup("ops"))
	assert.True(t, id.Matches("ALICE@example.com"))
	assert.True(t, id.Matches("sub-1"))
	assert.False(t, id.Matches(""))

	anon := IdentityFromClaims(&Claims{})
	assert.True(t, anon.IsAnonymous())
	assert.Equal(t, "", anon.ID())
}

func TestDevMiddleware(t *testing.T) {
	var got Identity
	handler := DevMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugEmailHeader, "dev@acme.com")
	req.Header.Set(DebugRoleHeader, "platform_admin")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev@acme.com", got.ID())
	assert.Equal(t, "platform_admin", got.Role)
}
