package client

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingHTTPClient(t *testing.T) {
	tests := []struct {
		name         string
		cacheControl string
		wantFetches  int32
	}{
		{name: "cacheable", cacheControl: "max-age=300", wantFetches: 1},
		{name: "no-store", cacheControl: "no-store", wantFetches: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fetches atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fetches.Add(1)
				w.Header().Set("Cache-Control", tt.cacheControl)
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"keys":[]}`)
			}))
			defer srv.Close()

			c := NewCachingHTTPClient(t.TempDir(), 0)

			var cached bool
			for range 2 {
				resp, err := c.Get(srv.URL + "/.well-known/jwks.json")
				require.NoError(t, err)
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				require.NoError(t, resp.Body.Close())
				assert.JSONEq(t, `{"keys":[]}`, string(body))
				cached = FromCache(resp)
			}

			assert.Equal(t, tt.wantFetches, fetches.Load())
			assert.Equal(t, tt.wantFetches == 1, cached)
		})
	}
}

func TestInMemoryCachingHTTPClient(t *testing.T) {
	c := NewInMemoryCachingHTTPClient()
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.NotNil(t, c.Transport)
}
