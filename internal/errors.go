package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnknownStage is returned by Use for a stage other than PreRouting or PostRouting.
	ErrUnknownStage = errors.New("anvil: unknown stage")

	// ErrFrozen is returned when registering after the app started serving.
	ErrFrozen = errors.New("anvil: configuration is frozen")

	// ErrNilHandler is returned when registering a nil chunk or handler.
	ErrNilHandler = errors.New("anvil: nil handler")

	// ErrNoRoute means no route matched and no fallback is registered.
	ErrNoRoute = errors.New("anvil: no route")

	// ErrNoResponse means the pipeline finished without sending anything.
	ErrNoResponse = errors.New("anvil: no response sent")

	// ErrResponseSent is returned by the send helpers once a response was sent.
	ErrResponseSent = errors.New("anvil: response already sent")

	// ErrMalformedJSON wraps request bodies that are not valid JSON.
	ErrMalformedJSON = errors.New("anvil: malformed json body")

	// ErrBodyTooLarge wraps request bodies over the configured limit.
	ErrBodyTooLarge = errors.New("anvil: request body too large")

	// ErrReservedPath is returned when a route uses a health or metrics path.
	ErrReservedPath = errors.New("anvil: path is served by an infrastructure endpoint")
)

// ConfigError reports a registration mistake.
// It wraps one of ErrUnknownStage, ErrFrozen, ErrNilHandler, ErrReservedPath.
type ConfigError struct {
	Err  error
	Op   string
	Name string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking chunk or handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("anvil: panic: %v", e.Value)
}

// HTTPError is a failure with the status code it should be answered with.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// RequestID is the request tracking ID, if known.
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code and message.
// An empty message defaults to the status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrPayloadTooLarge(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// toHTTPError maps any failure to the HTTPError it is answered with.
func toHTTPError(err error) *HTTPError {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return httpErr
	}
	return ErrInternal("", WithError(err))
}

// withRequestID returns err as an HTTPError stamped with id, leaving err
// untouched. An empty id or an error already carrying one is returned as is.
func withRequestID(err error, id string) error {
	if id == "" {
		return err
	}
	if httpErr, ok := err.(*HTTPError); ok {
		if httpErr.RequestID != "" {
			return err
		}
		stamped := *httpErr
		stamped.RequestID = id
		return &stamped
	}

	httpErr := toHTTPError(err)
	if httpErr.RequestID != "" {
		return err
	}
	return &HTTPError{Code: httpErr.Code, Message: httpErr.Message, RequestID: id, Err: err}
}
