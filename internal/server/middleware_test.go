package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{name: "single forwarded IP", headers: map[string]string{"X-Forwarded-For": "192.168.1.1"}, expected: "192.168.1.1"},
		{name: "multiple forwarded IPs take first", headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"}, expected: "203.0.113.1"},
		{name: "forwarded IPs with spaces", headers: map[string]string{"X-Forwarded-For": " 203.0.113.1  ,198.51.100.1"}, expected: "203.0.113.1"},
		{name: "real IP", headers: map[string]string{"X-Real-IP": "192.168.1.100"}, expected: "192.168.1.100"},
		{
			name:     "forwarded wins over real IP",
			headers:  map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.2"},
			expected: "10.0.0.1",
		},
		{name: "remote addr strips port", remoteAddr: "192.0.2.7:51234", expected: "192.0.2.7"},
		{name: "remote addr without port", remoteAddr: "192.0.2.7", expected: "192.0.2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remoteAddr != "" {
				r.RemoteAddr = tt.remoteAddr
			}

			require.Equal(t, tt.expected, ExtractClientIP(r))
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	var got string
	h := ClientIPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIPFromContext(r.Context())
		zerolog.Ctx(r.Context()).Info().Msg("audit")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.9")
	r = r.WithContext(log.WithContext(r.Context()))
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.9", got)
	assert.Contains(t, buf.String(), `"client_ip":"198.51.100.9"`)
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestWithCORS(t *testing.T) {
	h := WithCORS([]string{"https://app.example.com"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		origin      string
		allowOrigin string
	}{
		{name: "allowed origin", origin: "https://app.example.com", allowOrigin: "https://app.example.com"},
		{name: "unknown origin", origin: "https://evil.example.com", allowOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodOptions, "/api/orgs", nil)
			r.Header.Set("Origin", tt.origin)
			r.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			r.Header.Set("Access-Control-Request-Headers", "Authorization")

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
