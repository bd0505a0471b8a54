package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultJWKSCacheTTL matches the refresh interval of the identity provider's key rotation guidance.
const DefaultJWKSCacheTTL = 10 * time.Minute

// PublicKeyCache fetches and caches signing keys from JWKS endpoints.
type PublicKeyCache struct {
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]*cachedJWKS
}

type cachedJWKS struct {
	keys      map[string]any // kid → *rsa.PublicKey | *ecdsa.PublicKey
	expiresAt time.Time
}

// NewPublicKeyCache creates a new public key cache. A nil client falls back
// to a plain client with a 10 second timeout.
func NewPublicKeyCache(httpClient *http.Client, ttl time.Duration) *PublicKeyCache {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if ttl <= 0 {
		ttl = DefaultJWKSCacheTTL
	}

	return &PublicKeyCache{
		httpClient: httpClient,
		ttl:        ttl,
		now:        time.Now,
		cache:      make(map[string]*cachedJWKS),
	}
}

// GetKey returns the public key for kid published at jwksURL. An unknown kid
// triggers a refetch so rotated keys are picked up before the TTL expires.
func (c *PublicKeyCache) GetKey(ctx context.Context, jwksURL, kid string) (any, error) {
	c.mu.RLock()
	cached, ok := c.cache[jwksURL]
	c.mu.RUnlock()

	if ok && c.now().Before(cached.expiresAt) {
		if key, ok := cached.keys[kid]; ok {
			log.Debug().Str("kid", kid).Msg("JWKS cache hit")
			return key, nil
		}
	}

	keys, err := c.fetch(ctx, jwksURL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[jwksURL] = &cachedJWKS{
		keys:      keys,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}

	log.Info().Str("kid", kid).Int("total_keys", len(keys)).Msg("Cached JWKS")
	return key, nil
}

func (c *PublicKeyCache) fetch(ctx context.Context, jwksURL string) (map[string]any, error) {
	log.Debug().Str("jwks_url", jwksURL).Msg("Fetching JWKS")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS request failed: %s", resp.Status)
	}

	var jwks struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]any)
	for _, jwk := range jwks.Keys {
		kid, ok := jwk["kid"].(string)
		if !ok {
			log.Warn().Msg("JWK missing kid")
			continue
		}

		key, err := parseJWK(jwk)
		if err != nil {
			log.Warn().Err(err).Str("kid", kid).Msg("Failed to parse JWK")
			continue
		}

		keys[kid] = key
	}

	return keys, nil
}

// parseJWK parses an RSA or P-256 EC JSON Web Key.
func parseJWK(jwk map[string]any) (any, error) {
	kty, _ := jwk["kty"].(string)
	switch kty {
	case "RSA":
		n, err := decodeJWKField(jwk, "n")
		if err != nil {
			return nil, err
		}
		e, err := decodeJWKField(jwk, "e")
		if err != nil {
			return nil, err
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}, nil

	case "EC":
		crv, ok := jwk["crv"].(string)
		if !ok || crv != "P-256" {
			return nil, fmt.Errorf("unsupported curve: %v", crv)
		}
		x, err := decodeJWKField(jwk, "x")
		if err != nil {
			return nil, err
		}
		y, err := decodeJWKField(jwk, "y")
		if err != nil {
			return nil, err
		}
		return &ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(x),
			Y:     new(big.Int).SetBytes(y),
		}, nil
	}

	return nil, fmt.Errorf("unsupported key type: %v", kty)
}

func decodeJWKField(jwk map[string]any, name string) ([]byte, error) {
	s, ok := jwk[name].(string)
	if !ok {
		return nil, fmt.Errorf("missing %s", name)
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return b, nil
}
