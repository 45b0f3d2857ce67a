package internal

// HandlerFunc is the signature for route handlers.
// A handler answers by calling one of the Context send helpers.
// Returning a non-nil error fails the request through the error handler.
type HandlerFunc func(c *Context) error

// Middleware is a stage chunk. There is no next function: a chunk that
// sends a response stops the pipeline, one that returns without sending
// lets the next chunk run.
//
// Example:
//
//	func Auth(c *anvil.Context) error {
//	    if c.Session == nil {
//	        return c.Redirect(http.StatusSeeOther, "/login")
//	    }
//	    return nil
//	}
type Middleware func(c *Context) error

// ErrorHandler renders a failed request.
// It is called only when nothing has been written yet. Session changes
// are not persisted by its Send. A recorded request ID arrives as
// HTTPError.RequestID.
type ErrorHandler func(c *Context, err error) error
