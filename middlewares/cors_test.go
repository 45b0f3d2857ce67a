package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/anvil"
	"github.com/dmitrymomot/anvil/middlewares"
)

func corsApp(routed *bool, opts ...middlewares.CORSOption) *anvil.App {
	return anvil.New(
		anvil.WithMiddleware(anvil.PreRouting, middlewares.CORS(opts...)),
		anvil.WithRoute("/api", func(c *anvil.Context) error {
			*routed = true
			return c.Send(http.StatusOK, "data")
		}),
	)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("non-CORS request gets no headers", func(t *testing.T) {
		t.Parallel()

		var routed bool
		w := serve(corsApp(&routed), httptest.NewRequest(http.MethodGet, "/api", nil))

		assert.True(t, routed)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard origin", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodGet, "/api", nil)
		r.Header.Set("Origin", "https://example.com")
		w := serve(corsApp(&routed), r)

		assert.True(t, routed)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "data", w.Body.String())
	})

	t.Run("disallowed origin", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodGet, "/api", nil)
		r.Header.Set("Origin", "https://evil.com")
		w := serve(corsApp(&routed, middlewares.WithAllowOrigins("https://example.com")), r)

		assert.True(t, routed)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodGet, "/api", nil)
		r.Header.Set("Origin", "https://example.com")
		w := serve(corsApp(&routed, middlewares.WithAllowCredentials()), r)

		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight stops before routing", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodOptions, "/api", nil)
		r.Header.Set("Origin", "https://example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := serve(corsApp(&routed, middlewares.WithMaxAge(time.Hour)), r)

		assert.False(t, routed)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodGet, "/api", nil)
		r.Header.Set("Origin", "https://tenant.example.com")
		w := serve(corsApp(&routed,
			middlewares.WithAllowOrigins("https://other.com"),
			middlewares.WithAllowOriginFunc(func(o string) bool { return o == "https://tenant.example.com" }),
		), r)

		assert.Equal(t, "https://tenant.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from a rejected origin is routed", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodOptions, "/api", nil)
		r.Header.Set("Origin", "https://evil.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := serve(corsApp(&routed, middlewares.WithAllowOrigins("https://example.com")), r)

		assert.True(t, routed)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("plain OPTIONS is not a preflight", func(t *testing.T) {
		t.Parallel()

		var routed bool
		r := httptest.NewRequest(http.MethodOptions, "/api", nil)
		r.Header.Set("Origin", "https://example.com")
		w := serve(corsApp(&routed), r)

		assert.True(t, routed)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	t.Parallel()

	cfg := middlewares.DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	cfg.MaxAge = 0

	app := anvil.New(
		anvil.WithMiddleware(anvil.PreRouting, middlewares.CORSWithConfig(cfg)),
		anvil.WithRoute("/api", func(c *anvil.Context) error {
			return c.Send(http.StatusOK, "data")
		}),
	)

	r := httptest.NewRequest(http.MethodGet, "/api", nil)
	r.Header.Set("Origin", "https://app.example.com")
	w := serve(app, r)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))

	r = httptest.NewRequest(http.MethodOptions, "/api", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w = serve(app, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Max-Age"))
}
