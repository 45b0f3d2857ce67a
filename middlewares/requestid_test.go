package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil"
	"github.com/dmitrymomot/anvil/middlewares"
	"github.com/dmitrymomot/anvil/pkg/logger"
)

func serve(app *anvil.App, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, r)
	return w
}

func echoRequestID(c *anvil.Context) error {
	return c.Send(http.StatusOK, middlewares.GetRequestID(c))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a uuid v7 when not present", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(
			anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
			anvil.WithRoute("/", echoRequestID),
		)
		w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))

		id, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
		assert.Equal(t, id.String(), w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(
			anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
			anvil.WithRoute("/", echoRequestID),
		)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Correlation-ID", "existing-request-id-123")
		w := serve(app, r)

		assert.Equal(t, "existing-request-id-123", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})

	t.Run("custom generator and header", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(
			anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID(
				middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
				middlewares.WithRequestIDResponseHeader("X-Trace"),
			)),
			anvil.WithRoute("/", echoRequestID),
		)
		w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "fixed", w.Header().Get("X-Trace"))
		assert.Empty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("does not stop the pipeline", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(
			anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
			anvil.WithRoute("/", func(c *anvil.Context) error {
				return c.Send(http.StatusOK, "routed")
			}),
		)
		w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "routed", w.Body.String())
	})

	t.Run("GetRequestID without middleware", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(anvil.WithRoute("/", echoRequestID))
		w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, w.Body.String())
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: logger.FormatJSON, Output: &buf}, middlewares.RequestIDExtractor())

	app := anvil.New(
		anvil.WithLogger(log),
		anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
		anvil.WithRoute("/", func(c *anvil.Context) error {
			c.Logger().InfoContext(c.Context(), "handled", slog.String("path", c.URL.Path))
			return c.Send(http.StatusOK, "ok")
		}),
	)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-42")
	_ = serve(app, r)

	assert.Contains(t, buf.String(), `"msg":"handled"`)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestRequestIDOnFailure(t *testing.T) {
	t.Parallel()

	var rendered *anvil.HTTPError
	app := anvil.New(
		anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
		anvil.WithRoute("/", func(*anvil.Context) error {
			return anvil.ErrBadRequest("missing name")
		}),
		anvil.WithErrorHandler(func(c *anvil.Context, err error) error {
			rendered = anvil.AsHTTPError(err)
			return anvil.DefaultErrorHandler(c, err)
		}),
	)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "req-7")
	w := serve(app, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "req-7", w.Header().Get("X-Request-ID"))
	require.NotNil(t, rendered)
	assert.Equal(t, "req-7", rendered.RequestID)
	assert.Equal(t, "missing name", rendered.Message)
}
