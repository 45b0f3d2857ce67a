package internal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)

	if rw.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if !rw.Written() {
		t.Error("Written() = false, want true")
	}
}

func TestResponseWriter_WriteHeader_OnlyOnce(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusOK)
	rw.WriteHeader(http.StatusNotFound) // Should be ignored

	if rw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusOK)
	}
	if w.Code != http.StatusOK {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	data := []byte("hello world")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(data) {
		t.Errorf("Write() = %d, want %d", n, len(data))
	}
	if rw.Size() != int64(len(data)) {
		t.Errorf("Size() = %d, want %d", rw.Size(), len(data))
	}
	if !rw.Written() {
		t.Error("Written() = false, want true")
	}
	if w.Body.String() != "hello world" {
		t.Errorf("body = %q, want %q", w.Body.String(), "hello world")
	}
}

func TestResponseWriter_End(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		rw := NewResponseWriter(httptest.NewRecorder())
		rw.End()

		if rw.Ended() {
			t.Error("Ended() = true for a response that was never started")
		}
	})

	t.Run("rejects writes after end", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)

		_, _ = rw.Write([]byte("done"))
		rw.End()

		if !rw.Ended() {
			t.Fatal("Ended() = false, want true")
		}
		if !w.Flushed {
			t.Error("End() did not flush the underlying writer")
		}
		if _, err := rw.Write([]byte("more")); !errors.Is(err, ErrResponseSent) {
			t.Errorf("Write() after End error = %v, want ErrResponseSent", err)
		}
		if w.Body.String() != "done" {
			t.Errorf("body = %q, want %q", w.Body.String(), "done")
		}
	})
}

func TestResponseWriter_Unwrap(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	if rw.Unwrap() != w {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}
