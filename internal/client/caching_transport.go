package client

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// DefaultTimeout bounds a single JWKS fetch.
const DefaultTimeout = 10 * time.Second

// NewCachingHTTPClient creates an HTTP client that honours Cache-Control on
// responses, used to fetch identity provider signing keys. An empty cacheDir
// keeps the cache in memory.
func NewCachingHTTPClient(cacheDir string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var cache httpcache.Cache = httpcache.NewMemoryCache()
	if cacheDir != "" {
		// persists keys across restarts
		cache = diskcache.New(cacheDir)
	}

	return &http.Client{
		Transport: httpcache.NewTransport(cache),
		Timeout:   timeout,
	}
}

// NewInMemoryCachingHTTPClient creates an HTTP client with in-memory caching only.
func NewInMemoryCachingHTTPClient() *http.Client {
	return NewCachingHTTPClient("", DefaultTimeout)
}

// FromCache reports whether resp was served by the cache.
func FromCache(resp *http.Response) bool {
	return resp.Header.Get(httpcache.XFromCache) == "1"
}
