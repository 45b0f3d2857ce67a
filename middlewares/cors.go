package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/anvil/internal"
)

// CORSConfig describes which cross-origin requests are answered.
// It can be loaded from the environment with config.Load.
type CORSConfig struct {
	// AllowOriginFunc decides per origin. When set, AllowOrigins is ignored.
	AllowOriginFunc func(origin string) bool

	// AllowOrigins lists accepted origins; "*" accepts any.
	AllowOrigins  []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowMethods  []string      `env:"CORS_ALLOW_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders  []string      `env:"CORS_ALLOW_HEADERS" envSeparator:"," envDefault:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders []string      `env:"CORS_EXPOSE_HEADERS" envSeparator:","`
	MaxAge        time.Duration `env:"CORS_MAX_AGE" envDefault:"12h"`

	// AllowCredentials echoes the request origin instead of "*".
	AllowCredentials bool `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
}

// DefaultCORSConfig matches the env defaults of CORSConfig.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
}

// CORSOption adjusts a CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins replaces the accepted origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOrigins = origins }
}

// WithAllowOriginFunc decides per origin, overriding AllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOriginFunc = fn }
}

// WithAllowMethods replaces the methods announced to preflights.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowMethods = methods }
}

// WithAllowHeaders replaces the request headers announced to preflights.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowHeaders = headers }
}

// WithExposeHeaders sets the response headers scripts may read.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.ExposeHeaders = headers }
}

// WithAllowCredentials lets browsers send cookies cross-origin.
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowCredentials = true }
}

// WithMaxAge sets how long a preflight answer may be cached.
func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) { cfg.MaxAge = d }
}

// CORS returns a preRouting chunk built from DefaultCORSConfig and opts.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := DefaultCORSConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return CORSWithConfig(cfg)
}

// CORSWithConfig returns a preRouting chunk for cfg.
//
// Requests from an accepted origin get the CORS headers and continue.
// A preflight from an accepted origin is answered with 204, which ends the
// pipeline before routing; a preflight from any other origin is routed
// like a normal OPTIONS request.
func CORSWithConfig(cfg CORSConfig) internal.Middleware {
	p := newCORSPolicy(cfg)

	return func(c *internal.Context) error {
		r := c.Request()
		origin := r.Header.Get("Origin")
		if origin == "" || !p.accepts(origin) {
			return nil
		}

		h := c.Response().Header()
		p.decorate(h, origin)
		if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
			return nil
		}

		p.preflight(h)
		return c.Send(http.StatusNoContent, nil)
	}
}

// corsPolicy is a CORSConfig with its header values rendered once.
type corsPolicy struct {
	acceptFunc  func(string) bool
	origins     []string
	methods     string
	headers     string
	expose      string
	maxAge      string
	anyOrigin   bool
	credentials bool
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		acceptFunc:  cfg.AllowOriginFunc,
		origins:     cfg.AllowOrigins,
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		anyOrigin:   slices.Contains(cfg.AllowOrigins, "*"),
		credentials: cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}
	return p
}

func (p *corsPolicy) accepts(origin string) bool {
	if p.acceptFunc != nil {
		return p.acceptFunc(origin)
	}
	return p.anyOrigin || slices.Contains(p.origins, origin)
}

// decorate sets the headers every accepted cross-origin response carries.
func (p *corsPolicy) decorate(h http.Header, origin string) {
	h.Add("Vary", "Origin")

	allow := origin
	if p.anyOrigin && !p.credentials && p.acceptFunc == nil {
		allow = "*"
	}
	h.Set("Access-Control-Allow-Origin", allow)

	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.expose != "" {
		h.Set("Access-Control-Expose-Headers", p.expose)
	}
}

// preflight adds the headers that answer an OPTIONS preflight.
func (p *corsPolicy) preflight(h http.Header) {
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Allow-Headers", p.headers)
	if p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
}
