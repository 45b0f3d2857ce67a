package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/session"
)

// Context is the single value threaded through every stage of one request.
// Chunks and handlers may read and replace Session freely; it is written
// back to the session cookie by Send when it changed.
type Context struct {
	// Session is the decoded session value. A fresh visitor gets an
	// empty map. Setting it to nil deletes the session cookie.
	Session any

	// URL is the parsed request URL.
	URL *url.URL

	// Err holds the failure that ended the request, if any.
	// It is set by the app before the error handler runs.
	Err error

	req         *http.Request
	res         *ResponseWriter
	app         *pipeline
	fingerprint string

	// discardSession is set once the request failed; error responses
	// never carry session changes.
	discardSession bool
}

// newContext builds the context for one request with a zero session.
// The incoming session cookie is read by loadSession.
func newContext(w http.ResponseWriter, r *http.Request, p *pipeline) *Context {
	c := &Context{
		Session: map[string]any{},
		URL:     r.URL,
		req:     r,
		res:     NewResponseWriter(w),
		app:     p,
	}
	c.fingerprint, _ = session.Fingerprint(c.Session)
	return c
}

// loadSession decodes the session cookie and records its fingerprint.
// A signed cookie with a bad signature, or an encrypted one no key opens,
// reads as no session.
func (c *Context) loadSession() error {
	raw, err := c.readSessionCookie()
	if err != nil {
		return err
	}

	s, err := session.Decode(raw)
	if err != nil {
		return ErrBadRequest("Malformed session cookie", WithError(err))
	}
	fp, err := session.Fingerprint(s)
	if err != nil {
		return ErrBadRequest("Malformed session cookie", WithError(err))
	}

	c.Session = s
	c.fingerprint = fp
	return nil
}

func (c *Context) readSessionCookie() (string, error) {
	name := c.app.sessionCookie.Name
	var (
		raw string
		err error
	)
	switch c.app.sessionMode {
	case sessionSigned:
		raw, err = c.app.cookies.GetSigned(c.req, name)
	case sessionEncrypted:
		raw, err = c.app.cookies.GetEncrypted(c.req, name)
	default:
		raw, err = c.app.cookies.Get(c.req, name)
	}

	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, cookie.ErrNotFound),
		errors.Is(err, cookie.ErrBadSig),
		errors.Is(err, cookie.ErrDecrypt):
		return "", nil
	default:
		return "", err
	}
}

// persistSession rewrites the session cookie if the session changed since
// the request started. An empty encoding deletes the cookie. Nothing is
// written once the request failed.
func (c *Context) persistSession() error {
	if c.discardSession {
		return nil
	}
	fp, err := session.Fingerprint(c.Session)
	if err != nil {
		return err
	}
	if fp == c.fingerprint {
		return nil
	}

	encoded, err := session.Encode(c.Session)
	if err != nil {
		return err
	}

	cfg := c.app.sessionCookie
	w := c.res.ResponseWriter
	switch {
	case encoded == "" && c.app.sessionMode == sessionSigned:
		c.app.cookies.DeleteSigned(w, cfg.Name)
	case encoded == "":
		c.app.cookies.Delete(w, cfg.Name)
	case c.app.sessionMode == sessionSigned:
		err = c.app.cookies.SetSigned(w, cfg.Name, encoded, cfg.MaxAge)
	case c.app.sessionMode == sessionEncrypted:
		err = c.app.cookies.SetEncrypted(w, cfg.Name, encoded, cfg.MaxAge)
	default:
		c.app.cookies.Set(w, cfg.Name, encoded, cfg.MaxAge)
	}
	if err != nil {
		return err
	}
	c.fingerprint = fp
	return nil
}

// Request returns the underlying *http.Request.
func (c *Context) Request() *http.Request {
	return c.req
}

// Response returns the response writer.
// Writing to it directly counts as sending but skips session persistence.
func (c *Context) Response() *ResponseWriter {
	return c.res
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context {
	return c.req.Context()
}

// Set stores a value in the request context.
func (c *Context) Set(key, value any) {
	c.req = c.req.WithContext(context.WithValue(c.req.Context(), key, value))
}

// Get retrieves a value from the request context.
func (c *Context) Get(key any) any {
	return c.req.Context().Value(key)
}

type requestIDKey struct{}

// SetRequestID records the request ID on the request context. Failures
// rendered for this request carry it in HTTPError.RequestID.
func (c *Context) SetRequestID(id string) {
	c.Set(requestIDKey{}, id)
}

// RequestID returns the ID recorded by SetRequestID, or "".
func (c *Context) RequestID() string {
	return RequestIDFromContext(c.Context())
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Written reports whether a response has been started.
func (c *Context) Written() bool {
	return c.res.Written()
}

// Logger returns the application logger.
func (c *Context) Logger() *slog.Logger {
	return c.app.logger
}

// Send writes the session cookie if the session changed, applies headers,
// then transmits code and body. It is the only helper that persists the
// session.
//
// Body may be nil, a string, a []byte, an io.Reader or any other value,
// which is encoded as JSON. Readers that are also io.Closer are closed.
// Byte and stream bodies default to application/octet-stream.
func (c *Context) Send(code int, body any, headers ...Header) error {
	if c.res.Written() {
		return ErrResponseSent
	}
	if err := c.persistSession(); err != nil {
		return fmt.Errorf("anvil: persist session: %w", err)
	}

	h := c.res.Header()
	for _, hdr := range headers {
		h.Set(hdr.Key, hdr.Value)
	}

	switch b := body.(type) {
	case nil:
		c.res.WriteHeader(code)
		return nil
	case string:
		return c.write(code, []byte(b))
	case []byte:
		if h.Get("Content-Type") == "" {
			h.Set("Content-Type", "application/octet-stream")
		}
		return c.write(code, b)
	case io.Reader:
		if closer, ok := b.(io.Closer); ok {
			defer closer.Close()
		}
		if h.Get("Content-Type") == "" {
			h.Set("Content-Type", "application/octet-stream")
		}
		c.res.WriteHeader(code)
		_, err := io.Copy(c.res, b)
		return err
	default:
		data, err := encodeJSON(b, 0)
		if err != nil {
			return err
		}
		if h.Get("Content-Type") == "" {
			h.Set("Content-Type", "application/json; charset=utf-8")
		}
		return c.write(code, data)
	}
}

func (c *Context) write(code int, data []byte) error {
	c.res.Header().Set("Content-Length", strconv.Itoa(len(data)))
	c.res.WriteHeader(code)
	_, err := c.res.Write(data)
	return err
}

// SendFile streams the file at path through Send. Without headers the
// content type is taken from the file extension.
// An open failure is returned unchanged and nothing is sent.
func (c *Context) SendFile(code int, path string, headers ...Header) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("anvil: send file: %w", err)
	}
	if len(headers) == 0 {
		if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
			headers = []Header{{Key: "Content-Type", Value: ct}}
		}
	}
	return c.Send(code, f, headers...)
}

// SendJSON sends v as JSON with ContentJSON. A positive indent pretty-prints
// with that many spaces. HTML characters are not escaped.
func (c *Context) SendJSON(code int, v any, indent int) error {
	data, err := encodeJSON(v, indent)
	if err != nil {
		return err
	}
	return c.Send(code, data, ContentJSON)
}

// Redirect sets the Location header and sends code with an empty body.
// The code is not checked to be a 3xx status.
func (c *Context) Redirect(code int, target string) error {
	c.res.Header().Set("Location", target)
	return c.Send(code, nil)
}

// GetJSON reads the whole request body and decodes it into dst.
// Malformed JSON fails with a 400 HTTPError wrapping ErrMalformedJSON; a
// body over the configured limit fails with a 413 wrapping ErrBodyTooLarge.
func (c *Context) GetJSON(dst any) error {
	body := http.MaxBytesReader(c.res.ResponseWriter, c.req.Body, c.app.bodyLimit)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrPayloadTooLarge("", WithError(fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)))
		}
		return err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return ErrBadRequest("Malformed JSON", WithError(fmt.Errorf("%w: %w", ErrMalformedJSON, err)))
	}
	return nil
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
