package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/health"
	"github.com/dmitrymomot/anvil/pkg/logger"
)

// Pipeline outcomes, used as the metrics label and in the access log.
const (
	outcomeStoppedPre  = "stopped_pre_routing"
	outcomeStoppedPost = "stopped_post_routing"
	outcomeCompleted   = "completed"
	outcomeFailed      = "failed"
)

// App collects chunks and routes until it starts serving.
// Handler and Listen freeze it: from then on Use and Route fail with
// ErrFrozen and requests are served from an immutable snapshot.
type App struct {
	logger        *slog.Logger
	errorHandler  ErrorHandler
	tracer        trace.Tracer
	routes        *routeTable
	health        *healthConfig
	metricsReg    *prometheus.Registry
	frozen        *pipeline
	metricsPath   string
	cookieConfig  CookieConfig
	pre           []Middleware
	post          []Middleware
	sessionCookie SessionCookieConfig
	bodyLimit     int64
	mu            sync.Mutex
}

// New creates a new application with the given options.
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithLogger(log),
//	    anvil.WithCookieConfig(anvil.CookieConfig{Keys: []string{secret}}),
//	    anvil.WithRoute("/", landing),
//	)
func New(opts ...Option) *App {
	a := &App{
		logger:        logger.NewNope(),
		errorHandler:  DefaultErrorHandler,
		tracer:        defaultTracer(),
		routes:        newRouteTable(),
		sessionCookie: DefaultSessionCookieConfig(),
		bodyLimit:     DefaultBodyLimit,
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Use appends chunks to a stage. Chunks run in registration order.
func (a *App) Use(stage Stage, mw ...Middleware) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !stage.valid() {
		return &ConfigError{Op: "use", Name: string(stage), Err: ErrUnknownStage}
	}
	if a.frozen != nil {
		return &ConfigError{Op: "use", Name: string(stage), Err: ErrFrozen}
	}
	for _, m := range mw {
		if m == nil {
			return &ConfigError{Op: "use", Name: string(stage), Err: ErrNilHandler}
		}
	}

	if stage == PreRouting {
		a.pre = append(a.pre, mw...)
	} else {
		a.post = append(a.post, mw...)
	}
	return nil
}

// Route registers h for the exact path. The path "*" registers the
// fallback used when nothing else matches. A later registration for the
// same path replaces the earlier one.
func (a *App) Route(path string, h HandlerFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen != nil {
		return &ConfigError{Op: "route", Name: path, Err: ErrFrozen}
	}
	if h == nil {
		return &ConfigError{Op: "route", Name: path, Err: ErrNilHandler}
	}

	a.routes.register(path, h)
	return nil
}

// Handler freezes the app and returns its http.Handler.
// Infrastructure endpoints (health, metrics) are answered directly;
// every other request goes through the stage pipeline.
// It panics if a route collides with an infrastructure path.
func (a *App) Handler() http.Handler {
	p, err := a.freeze()
	if err != nil {
		panic(err)
	}
	return p.handler
}

// Listen freezes the app, binds addr and serves until shutdown.
// onReady, if not nil, is called with the bound address before serving.
// A route colliding with an infrastructure path fails with a *ConfigError
// wrapping ErrReservedPath before anything is bound.
//
// Example:
//
//	err := app.Listen(":3500", func(addr net.Addr) {
//	    log.Info("server is listening...", "addr", addr.String())
//	})
func (a *App) Listen(addr string, onReady func(net.Addr), opts ...RunOption) error {
	p, err := a.freeze()
	if err != nil {
		return err
	}
	return p.listen(addr, onReady, newRunConfig(p.logger, opts...))
}

// freeze snapshots the registry once. Later calls return the same snapshot.
// A failed freeze leaves the app open for registration.
func (a *App) freeze() (*pipeline, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen != nil {
		return a.frozen, nil
	}
	for _, path := range a.reservedPaths() {
		if a.routes.has(path) {
			return nil, &ConfigError{Op: "route", Name: path, Err: ErrReservedPath}
		}
	}

	cookies := a.sessionCookie.cookieManager(a.cookieConfig)
	p := &pipeline{
		pre:           slices.Clone(a.pre),
		post:          slices.Clone(a.post),
		routes:        a.routes.freeze(),
		logger:        a.logger,
		errorHandler:  a.errorHandler,
		tracer:        a.tracer,
		cookies:       cookies,
		sessionCookie: a.sessionCookie,
		sessionMode:   a.sessionCookie.mode(cookies.HasKeys()),
		bodyLimit:     a.bodyLimit,
	}
	if a.sessionCookie.wantsKeys() && p.sessionMode == sessionPlain {
		a.logger.Warn("session cookie is not protected: no cookie keys configured",
			slog.String("cookie", a.sessionCookie.Name),
		)
	}
	if a.metricsReg != nil {
		p.metrics = newMetrics(a.metricsReg, a.metricsPath)
	}

	p.handler = a.mux(p)
	a.frozen = p
	return p, nil
}

// reservedPaths lists the exact paths answered outside the pipeline.
func (a *App) reservedPaths() []string {
	var paths []string
	if a.health != nil {
		paths = append(paths, a.health.livenessPath, a.health.readinessPath)
	}
	if a.metricsReg != nil {
		paths = append(paths, a.metricsPath)
	}
	return paths
}

// mux mounts infrastructure endpoints beside the pipeline.
func (a *App) mux(p *pipeline) http.Handler {
	r := chi.NewRouter()

	if a.health != nil {
		r.Get(a.health.livenessPath, health.LivenessHandler())
		r.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks, health.WithLogger(a.logger)))
	}
	if p.metrics != nil {
		r.Method(http.MethodGet, p.metrics.path, p.metrics.handler)
	}

	r.NotFound(p.ServeHTTP)
	r.MethodNotAllowed(p.ServeHTTP)
	return r
}

// pipeline is the frozen snapshot of an App. It has no mutators.
type pipeline struct {
	logger        *slog.Logger
	errorHandler  ErrorHandler
	tracer        trace.Tracer
	cookies       *cookie.Manager
	metrics       *metrics
	handler       http.Handler
	routes        routeSet
	pre           []Middleware
	post          []Middleware
	sessionCookie SessionCookieConfig
	bodyLimit     int64
	sessionMode   sessionMode
}

// ServeHTTP drives one request through preRouting, routing and postRouting.
func (p *pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := startRequestSpan(r.Context(), p.tracer, r.Method, r.URL.Path)
	defer span.End()

	c := newContext(w, r.WithContext(ctx), p)
	outcome, err := p.drive(c)
	if err != nil {
		p.fail(c, err)
	}

	status := c.res.Status()
	span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.String("anvil.outcome", outcome),
	)
	endSpan(span, err)

	elapsed := time.Since(start)
	p.metrics.observe(outcome, elapsed)
	p.logger.LogAttrs(c.Context(), slog.LevelInfo, "request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("outcome", outcome),
		slog.Duration("duration", elapsed),
	)
}

// drive runs the stages. A stage that sends a response ends the request.
// Panics in chunks or handlers are returned as *PanicError.
func (p *pipeline) drive(c *Context) (outcome string, err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			outcome, err = outcomeFailed, &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	if err := c.loadSession(); err != nil {
		return outcomeFailed, err
	}

	sig, err := traceStage(c, p.tracer, PreRouting, p.pre)
	if err != nil {
		return outcomeFailed, err
	}
	if sig == Stop {
		return outcomeStoppedPre, nil
	}

	h, ok := p.routes.resolve(c.URL.Path)
	if !ok {
		return outcomeFailed, ErrNotFound("", WithError(fmt.Errorf("%w: %s", ErrNoRoute, c.URL.Path)))
	}
	if err := h(c); err != nil {
		return outcomeFailed, err
	}

	sig, err = traceStage(c, p.tracer, PostRouting, p.post)
	if err != nil {
		return outcomeFailed, err
	}
	if sig == Stop {
		return outcomeStoppedPost, nil
	}

	if !c.Written() {
		return outcomeFailed, ErrNoResponse
	}
	c.res.End()
	return outcomeCompleted, nil
}

// fail records err on the context, logs it and renders it if nothing was
// sent yet. Once a response started, the failure is only logged.
// Session changes made before the failure are dropped.
func (p *pipeline) fail(c *Context, err error) {
	c.Err = err
	c.discardSession = true
	httpErr := toHTTPError(err)

	level := slog.LevelWarn
	if httpErr.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.String("method", c.req.Method),
		slog.String("path", c.URL.Path),
		slog.Int("status", httpErr.Code),
		slog.String("error", err.Error()),
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		attrs = append(attrs, slog.String("stack", string(panicErr.Stack)))
	}
	p.logger.LogAttrs(c.Context(), level, "request failed", attrs...)

	if c.Written() {
		return
	}
	if herr := p.errorHandler(c, withRequestID(err, c.RequestID())); herr != nil {
		p.logger.LogAttrs(c.Context(), slog.LevelError, "error handler failed",
			slog.String("error", herr.Error()),
		)
		if !c.Written() {
			http.Error(c.res, httpErr.StatusText(), httpErr.Code)
		}
	}
}

// DefaultErrorHandler sends the status code and the user-facing message as
// plain text.
func DefaultErrorHandler(c *Context, err error) error {
	httpErr := toHTTPError(err)
	return c.Send(httpErr.Code, httpErr.Message, contentText)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
