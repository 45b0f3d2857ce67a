package anvil

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/health"
)

// Type aliases - public API
type (
	// App collects stage chunks and routes, then serves them.
	App = internal.App

	// Context is the per-request value shared by all stages.
	Context = internal.Context

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware is a stage chunk. Sending a response stops the pipeline.
	Middleware = internal.Middleware

	// ErrorHandler renders failed requests.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Stage names a middleware group.
	Stage = internal.Stage

	// Signal is the result of running a stage.
	Signal = internal.Signal

	// Header is a response header passed to the send helpers.
	Header = internal.Header

	// ResponseWriter tracks whether a response was sent.
	ResponseWriter = internal.ResponseWriter

	// CookieConfig configures the cookie transport.
	CookieConfig = internal.CookieConfig

	// SessionCookieConfig describes the session cookie.
	SessionCookieConfig = internal.SessionCookieConfig

	// HTTPError is a failure with the status code it is answered with.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ConfigError reports a registration mistake.
	ConfigError = internal.ConfigError

	// PanicError carries a value recovered from a chunk or handler.
	PanicError = internal.PanicError
)

// Stages
const (
	PreRouting  = internal.PreRouting
	PostRouting = internal.PostRouting
)

// Stage signals
const (
	Continue = internal.Continue
	Stop     = internal.Stop
)

// Defaults
const (
	DefaultSessionCookieName   = internal.DefaultSessionCookieName
	DefaultSessionCookieMaxAge = internal.DefaultSessionCookieMaxAge
	DefaultBodyLimit           = internal.DefaultBodyLimit
)

// Content type headers
var (
	ContentHTML       = internal.ContentHTML
	ContentCSS        = internal.ContentCSS
	ContentJavaScript = internal.ContentJavaScript
	ContentJSON       = internal.ContentJSON
)

// Errors for checking return values.
var (
	ErrUnknownStage  = internal.ErrUnknownStage
	ErrFrozen        = internal.ErrFrozen
	ErrNilHandler    = internal.ErrNilHandler
	ErrNoRoute       = internal.ErrNoRoute
	ErrNoResponse    = internal.ErrNoResponse
	ErrResponseSent  = internal.ErrResponseSent
	ErrMalformedJSON = internal.ErrMalformedJSON
	ErrBodyTooLarge  = internal.ErrBodyTooLarge
	ErrReservedPath  = internal.ErrReservedPath
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithLogger(log),
//	    anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
//	    anvil.WithRoute("/", landing),
//	)
//
//	err := app.Listen(":8080", nil)
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// RunStage runs chunks against c and reports whether the pipeline continues.
func RunStage(chunks []Middleware, c *Context) (Signal, error) {
	return internal.RunStage(chunks, c)
}

// DefaultSessionCookieConfig returns the session cookie defaults.
func DefaultSessionCookieConfig() SessionCookieConfig {
	return internal.DefaultSessionCookieConfig()
}

// DefaultErrorHandler sends the status code and message as plain text.
func DefaultErrorHandler(c *Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}

// App options

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithCookieConfig sets the cookie transport configuration.
func WithCookieConfig(cfg CookieConfig) Option {
	return internal.WithCookieConfig(cfg)
}

// WithSessionCookie sets the session cookie metadata.
func WithSessionCookie(cfg SessionCookieConfig) Option {
	return internal.WithSessionCookie(cfg)
}

// WithErrorHandler sets the handler that renders failed requests.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithBodyLimit sets the maximum request body size read by GetJSON.
func WithBodyLimit(n int64) Option {
	return internal.WithBodyLimit(n)
}

// WithMiddleware registers chunks for a stage. Panics on an unknown stage.
func WithMiddleware(stage Stage, mw ...Middleware) Option {
	return internal.WithMiddleware(stage, mw...)
}

// WithRoute registers a route. The path "*" registers the fallback.
func WithRoute(path string, h HandlerFunc) Option {
	return internal.WithRoute(path, h)
}

// WithHealthChecks enables liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics serves Prometheus request metrics at path.
func WithMetrics(path string, reg *prometheus.Registry) Option {
	return internal.WithMetrics(path, reg)
}

// WithTracerProvider sets the OpenTelemetry provider for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return internal.WithTracerProvider(tp)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Logger sets the logger for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context; cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrPayloadTooLarge creates a 413 HTTPError.
func ErrPayloadTooLarge(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrPayloadTooLarge(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithError sets the underlying error of an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// WithRequestID sets the request ID of an HTTPError.
func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

// RequestIDFromContext returns the request ID recorded with
// Context.SetRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return internal.RequestIDFromContext(ctx)
}

// AsHTTPError extracts the HTTPError from an error chain.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}
