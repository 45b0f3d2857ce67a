// Package anvil is a minimal HTTP application layer with an explicit
// request lifecycle and cookie-only sessions.
//
// Every request runs through three stages that share one [*Context]:
//
//  1. preRouting chunks
//  2. the route handler, looked up by exact path (or the "*" fallback)
//  3. postRouting chunks
//
// A chunk has no next function. It ends the request by sending a
// response; returning without sending lets the pipeline continue.
//
// # Quick Start
//
//	app := anvil.New(
//	    anvil.WithCookieConfig(anvil.CookieConfig{Keys: []string{secret}}),
//	    anvil.WithMiddleware(anvil.PreRouting, middlewares.RequestID()),
//	    anvil.WithRoute("/", func(c *anvil.Context) error {
//	        return c.Send(http.StatusOK, "landing page", anvil.ContentHTML)
//	    }),
//	)
//
//	err := app.Listen(":8080", func(addr net.Addr) {
//	    log.Info("listening", "addr", addr.String())
//	})
//
// # Sessions
//
// [Context.Session] holds any JSON-serializable value. It is decoded from
// the session cookie at the start of the request and written back by
// [Context.Send] only if it changed. Setting it to nil deletes the cookie.
// With cookie keys configured the cookie keeps its base64 JSON value and
// an HMAC signature travels in a second "<name>.sig" cookie; a missing or
// bad signature reads as an empty session. SessionCookieConfig.Encrypted
// seals the value with AES-GCM instead. A failed request never writes the
// session.
//
// # Errors
//
// Registration mistakes return a [*ConfigError]. Failures inside chunks and
// handlers are stored in Context.Err, logged, and rendered by the
// [ErrorHandler] unless a response was already sent. [HTTPError] carries
// the status code to answer with; any other error becomes a 500. The error
// handler receives an HTTPError stamped with the request ID when one was
// recorded. Routes may not reuse health or metrics paths: freezing fails
// with ErrReservedPath.
//
// # Freezing
//
// [App.Handler] and [App.Listen] freeze the app. After that [App.Use] and
// [App.Route] fail with [ErrFrozen].
package anvil
