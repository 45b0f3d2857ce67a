package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultListenAddr = ":8080"

// HTTP server limits. The pipeline itself never times a request out.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// RunOption configures Listen.
type RunOption func(*runConfig)

type runConfig struct {
	ctx             context.Context
	logger          *slog.Logger
	hooks           []func(context.Context) error
	shutdownTimeout time.Duration
}

func newRunConfig(l *slog.Logger, opts ...RunOption) runConfig {
	cfg := runConfig{
		ctx:             context.Background(),
		logger:          l,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Logger overrides the app logger for server lifecycle records.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds draining in-flight requests plus running the hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ShutdownHook registers cleanup run after the server stopped accepting
// requests, in registration order. A failing hook does not skip the rest.
//
// Example:
//
//	anvil.ShutdownHook(func(ctx context.Context) error {
//	    sentry.Flush(2 * time.Second)
//	    return nil
//	})
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.hooks = append(c.hooks, fn)
		}
	}
}

// WithContext sets the context Listen serves under. Cancelling it stops
// the server the same way SIGINT or SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// listen binds addr and serves the frozen pipeline until cfg.ctx is done
// or a termination signal arrives.
func (p *pipeline) listen(addr string, onReady func(net.Addr), cfg runConfig) error {
	if addr == "" {
		addr = defaultListenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("anvil: listen %s: %w", addr, err)
	}

	cfg.logger.Info("server starting",
		slog.String("address", ln.Addr().String()),
		slog.Int("routes", p.routes.size()),
		slog.Bool("fallback", p.routes.fallback != nil),
		slog.Int("pre_routing", len(p.pre)),
		slog.Int("post_routing", len(p.post)),
		slog.String("session", p.sessionMode.String()),
	)
	if onReady != nil {
		onReady(ln.Addr())
	}

	ctx, stop := signal.NotifyContext(cfg.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := p.server(cfg.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, cfg)
	})
	return g.Wait()
}

func (p *pipeline) server(l *slog.Logger) *http.Server {
	return &http.Server{
		Handler:           p.handler,
		ErrorLog:          slog.NewLogLogger(l.Handler(), slog.LevelWarn),
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
}

// shutdown drains srv, then runs every hook under the same deadline.
func shutdown(srv *http.Server, cfg runConfig) error {
	cfg.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("anvil: drain: %w", err))
	}
	for i, hook := range cfg.hooks {
		if err := hook(ctx); err != nil {
			cfg.logger.Error("shutdown hook failed", slog.Int("hook", i), slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	cfg.logger.Info("server stopped")
	return nil
}
