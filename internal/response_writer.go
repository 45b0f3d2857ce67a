package internal

import (
	"bufio"
	"net"
	"net/http"
)

// ResponseWriter wraps http.ResponseWriter to track whether a response
// was sent. The stage runner reads Written after every chunk.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
	ended   bool
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader sends the status line once; later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.written = true
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Write writes the data to the connection as part of an HTTP reply.
// It fails with ErrResponseSent after End.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.ended {
		return 0, ErrResponseSent
	}
	if !w.written {
		w.WriteHeader(w.status)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// End finalizes a started response: buffered data is flushed and further
// writes are rejected. It does nothing if the response was not started.
func (w *ResponseWriter) End() {
	if !w.written || w.ended {
		return
	}
	w.ended = true
	w.Flush()
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	return w.status
}

// Size returns the number of bytes written to the response body.
func (w *ResponseWriter) Size() int64 {
	return w.size
}

// Written returns true if the response has been started.
func (w *ResponseWriter) Written() bool {
	return w.written
}

// Ended returns true once End finalized the response.
func (w *ResponseWriter) Ended() bool {
	return w.ended
}

// Flush implements the http.Flusher interface.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
