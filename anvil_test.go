package anvil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anvil"
	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/session"
)

func serve(app *anvil.App, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, r)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestUnknownStage(t *testing.T) {
	t.Parallel()

	err := anvil.New().Use("bogusGroup", func(*anvil.Context) error { return nil })

	var cfgErr *anvil.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, anvil.ErrUnknownStage)
}

func TestLandingPage(t *testing.T) {
	t.Parallel()

	app := anvil.New(anvil.WithRoute("/", func(c *anvil.Context) error {
		return c.Send(http.StatusOK, "landing page", anvil.ContentHTML)
	}))
	w := serve(app, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "landing page", w.Body.String())
	assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
	assert.Nil(t, findCookie(w, anvil.DefaultSessionCookieName))
}

func TestSessionMutationIsPersisted(t *testing.T) {
	t.Parallel()

	app := anvil.New(
		anvil.WithCookieConfig(anvil.CookieConfig{Keys: []string{"k2", "k1"}}),
		anvil.WithRoute("/", func(c *anvil.Context) error {
			c.Session = map[string]any{"uid": 1}
			return c.Send(http.StatusOK, nil)
		}),
	)

	first := findCookie(serve(app, http.MethodGet, "/"), anvil.DefaultSessionCookieName)
	second := findCookie(serve(app, http.MethodGet, "/"), anvil.DefaultSessionCookieName)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Value, second.Value)
}

func TestSessionSurvivesKeyRotation(t *testing.T) {
	t.Parallel()

	login := func(c *anvil.Context) error {
		c.Session = map[string]any{"uid": "u-1"}
		return c.Send(http.StatusOK, nil)
	}
	var seen any
	me := func(c *anvil.Context) error {
		seen = c.Session
		return c.Send(http.StatusOK, nil)
	}

	oldApp := anvil.New(
		anvil.WithCookieConfig(anvil.CookieConfig{Keys: []string{"old"}}),
		anvil.WithRoute("/login", login),
	)
	newApp := anvil.New(
		anvil.WithCookieConfig(anvil.CookieConfig{Keys: []string{"new", "old"}}),
		anvil.WithRoute("/me", me),
	)

	w := serve(oldApp, http.MethodGet, "/login")
	require.NotNil(t, findCookie(w, anvil.DefaultSessionCookieName))
	serve(newApp, http.MethodGet, "/me", w.Result().Cookies()...)

	assert.Equal(t, map[string]any{"uid": "u-1"}, seen)
}

func TestSendJSONIndent(t *testing.T) {
	t.Parallel()

	app := anvil.New(anvil.WithRoute("/", func(c *anvil.Context) error {
		return c.SendJSON(http.StatusOK, map[string]int{"a": 1}, 2)
	}))
	w := serve(app, http.MethodGet, "/")

	assert.Equal(t, "{\n  \"a\": 1\n}", w.Body.String())
	assert.Equal(t, anvil.ContentJSON.Value, w.Header().Get("Content-Type"))
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	app := anvil.New(anvil.WithRoute("/", func(c *anvil.Context) error {
		return c.Redirect(http.StatusSeeOther, "/home")
	}))
	w := serve(app, http.MethodGet, "/")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
	assert.Empty(t, w.Body.String())
}

func TestPreRoutingShortCircuit(t *testing.T) {
	t.Parallel()

	var bRan, routed, postRan bool
	app := anvil.New(
		anvil.WithMiddleware(anvil.PreRouting,
			func(c *anvil.Context) error { return c.Send(http.StatusForbidden, "stop") },
			func(*anvil.Context) error {
				bRan = true
				return nil
			},
		),
		anvil.WithRoute("*", func(c *anvil.Context) error {
			routed = true
			return c.Send(http.StatusOK, nil)
		}),
		anvil.WithMiddleware(anvil.PostRouting, func(*anvil.Context) error {
			postRan = true
			return nil
		}),
	)
	w := serve(app, http.MethodGet, "/anything")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, bRan)
	assert.False(t, routed)
	assert.False(t, postRan)
}

func TestNotFoundWithoutFallback(t *testing.T) {
	t.Parallel()

	app := anvil.New(anvil.WithRoute("/", func(c *anvil.Context) error {
		return c.Send(http.StatusOK, nil)
	}))
	w := serve(app, http.MethodGet, "/xyz")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFallbackSeesPath(t *testing.T) {
	t.Parallel()

	var path string
	app := anvil.New(anvil.WithRoute("*", func(c *anvil.Context) error {
		path = c.URL.Path
		return c.Send(http.StatusOK, nil)
	}))
	serve(app, http.MethodGet, "/xyz")

	assert.Equal(t, "/xyz", path)
}

func TestRunStage(t *testing.T) {
	t.Parallel()

	var sig anvil.Signal
	app := anvil.New(anvil.WithRoute("/", func(c *anvil.Context) error {
		var err error
		sig, err = anvil.RunStage([]anvil.Middleware{
			func(c *anvil.Context) error { return c.Send(http.StatusOK, "inner") },
		}, c)
		return err
	}))
	w := serve(app, http.MethodGet, "/")

	assert.Equal(t, anvil.Stop, sig)
	assert.Equal(t, "inner", w.Body.String())
}

func TestSessionCookieWireFormat(t *testing.T) {
	t.Parallel()

	addToCart := func(c *anvil.Context) error {
		c.Session = map[string]any{"cart": []any{"apple"}}
		return c.Send(http.StatusOK, nil)
	}

	t.Run("unsigned", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(
			anvil.WithSessionCookie(anvil.SessionCookieConfig{Name: "sid", HTTPOnly: true}),
			anvil.WithRoute("/", addToCart),
		)
		w := serve(app, http.MethodGet, "/")
		sid := findCookie(w, "sid")
		require.NotNil(t, sid)

		decoded, err := session.Decode(sid.Value)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"cart": []any{"apple"}}, decoded)
		assert.Nil(t, findCookie(w, "sid"+cookie.SigSuffix))
	})

	t.Run("signed keeps the value readable", func(t *testing.T) {
		t.Parallel()

		app := anvil.New(
			anvil.WithCookieConfig(anvil.CookieConfig{Keys: []string{"k1"}}),
			anvil.WithRoute("/", addToCart),
		)
		w := serve(app, http.MethodGet, "/")

		value := findCookie(w, anvil.DefaultSessionCookieName)
		require.NotNil(t, value)
		decoded, err := session.Decode(value.Value)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"cart": []any{"apple"}}, decoded)

		sig := findCookie(w, anvil.DefaultSessionCookieName+cookie.SigSuffix)
		require.NotNil(t, sig)
		assert.NotEmpty(t, sig.Value)
		assert.Equal(t, value.MaxAge, sig.MaxAge)
	})
}
