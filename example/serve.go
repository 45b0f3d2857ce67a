package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/anvil"
	"github.com/dmitrymomot/anvil/middlewares"
	"github.com/dmitrymomot/anvil/pkg/config"
	"github.com/dmitrymomot/anvil/pkg/logger"
)

// appConfig is read from the environment and an optional .env file.
type appConfig struct {
	Addr    string `env:"ADDR" envDefault:":3500"`
	Log     logger.Config
	Sentry  logger.SentryConfig
	Cookies anvil.CookieConfig
	Session anvil.SessionCookieConfig
	CORS    middlewares.CORSConfig
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the example HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg appConfig
			if err := config.Load(&cfg); err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg appConfig) error {
	log := logger.NewWithSentry(cfg.Log, cfg.Sentry, middlewares.RequestIDExtractor())

	if len(cfg.Cookies.Keys) == 0 {
		cfg.Cookies.Keys = []string{"notasecret", "1234567890", "abcdefghij"}
		log.Warn("COOKIE_KEYS not set, using development keys")
	}

	app := anvil.New(
		anvil.WithLogger(log),
		anvil.WithCookieConfig(cfg.Cookies),
		anvil.WithSessionCookie(cfg.Session),
		anvil.WithHealthChecks(),
		anvil.WithMetrics("/metrics", prometheus.NewRegistry()),

		anvil.WithMiddleware(anvil.PreRouting,
			middlewares.RequestID(),
			middlewares.CORSWithConfig(cfg.CORS),
			logChunk("function1 - pre"),
			logChunk("function2 - pre"),
		),

		anvil.WithRoute("/", func(c *anvil.Context) error {
			c.Logger().InfoContext(c.Context(), "route '/'")
			return c.Send(http.StatusOK, "landing page")
		}),
		anvil.WithRoute("/home", func(c *anvil.Context) error {
			c.Logger().InfoContext(c.Context(), "route '/home'")
			return c.Send(http.StatusOK, "home page")
		}),
		anvil.WithRoute("/visits", visits),
		anvil.WithRoute("/logout", func(c *anvil.Context) error {
			c.Session = nil
			return c.Redirect(http.StatusSeeOther, "/")
		}),

		anvil.WithMiddleware(anvil.PostRouting, logChunk("function3 - post")),
	)

	return app.Listen(cfg.Addr,
		func(addr net.Addr) {
			log.Info("server is listening...", slog.String("address", addr.String()))
		},
		anvil.WithContext(ctx),
		anvil.ShutdownHook(func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		}),
	)
}

// logChunk is a chunk that only logs, so the pipeline always continues.
func logChunk(msg string) anvil.Middleware {
	return func(c *anvil.Context) error {
		c.Logger().InfoContext(c.Context(), msg)
		return nil
	}
}

// visits counts page views in the session cookie.
func visits(c *anvil.Context) error {
	s, ok := c.Session.(map[string]any)
	if !ok {
		s = map[string]any{}
	}

	n, _ := s["visits"].(float64)
	s["visits"] = n + 1
	c.Session = s

	return c.SendJSON(http.StatusOK, map[string]any{
		"visits": s["visits"],
	}, 2)
}
