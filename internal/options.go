package internal

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger.
// Defaults to a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieConfig sets the cookie transport configuration.
// Keys enable signing of the session cookie.
func WithCookieConfig(cfg CookieConfig) Option {
	return func(a *App) {
		a.cookieConfig = cfg
	}
}

// WithSessionCookie sets the session cookie metadata.
// Empty name and path fall back to the defaults.
func WithSessionCookie(cfg SessionCookieConfig) Option {
	return func(a *App) {
		if cfg.Name == "" {
			cfg.Name = DefaultSessionCookieName
		}
		if cfg.Path == "" {
			cfg.Path = "/"
		}
		a.sessionCookie = cfg
	}
}

// WithErrorHandler sets the handler that renders failed requests.
//
// Example:
//
//	anvil.WithErrorHandler(func(c *anvil.Context, err error) error {
//	    httpErr := anvil.AsHTTPError(err)
//	    if httpErr == nil {
//	        httpErr = anvil.ErrInternal("")
//	    }
//	    return c.SendJSON(httpErr.Code, map[string]string{"error": httpErr.Message}, 0)
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithBodyLimit sets the maximum request body size read by GetJSON.
// Defaults to 1MB.
func WithBodyLimit(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.bodyLimit = n
		}
	}
}

// WithMiddleware registers chunks for a stage during construction.
// It panics on an unknown stage or a nil chunk.
func WithMiddleware(stage Stage, mw ...Middleware) Option {
	return func(a *App) {
		if err := a.Use(stage, mw...); err != nil {
			panic(err)
		}
	}
}

// WithRoute registers a route during construction.
// It panics on a nil handler.
func WithRoute(path string, h HandlerFunc) Option {
	return func(a *App) {
		if err := a.Route(path, h); err != nil {
			panic(err)
		}
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
// They are served outside the stage pipeline; a route on either path
// fails the freeze with ErrReservedPath.
//
// Example:
//
//	anvil.WithHealthChecks(
//	    anvil.WithReadinessCheck("upstream", pingUpstream),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

// WithMetrics records request counts and durations on reg and serves
// them at path. A nil reg creates a fresh registry; an empty path
// defaults to "/metrics". A route on that path fails the freeze with
// ErrReservedPath.
func WithMetrics(path string, reg *prometheus.Registry) Option {
	return func(a *App) {
		if path == "" {
			path = defaultMetricsPath
		}
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		a.metricsPath = path
		a.metricsReg = reg
	}
}

// WithTracerProvider sets the provider request spans are created from.
// Defaults to the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *App) {
		if tp != nil {
			a.tracer = tp.Tracer(defaultTracerName)
		}
	}
}
