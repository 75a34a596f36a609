package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
)

// TimeoutMessage is the error body of a request cut off by Timeout.
const TimeoutMessage = "Request timeout"

// Timeout returns middleware that answers 504 when the handler has not
// written a response within d. The handler's context is cancelled so store
// calls can stop early; anything it writes afterwards is discarded. The
// handler works on its own copy of the response headers, so headers it sets
// only reach the client together with its own status line.
// A panic in the handler is re-raised on the calling goroutine.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutResponseWriter{ResponseWriter: w, h: w.Header().Clone()}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
						return
					}
					close(done)
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case p := <-panicked:
				// Re-raised on the serving goroutine so Recover sees it.
				panic(p)
			case <-done:
			case <-ctx.Done():
				tw.mu.Lock()
				tw.timedOut = true
				if !tw.written {
					respond.Message(w, http.StatusGatewayTimeout, TimeoutMessage)
				}
				tw.mu.Unlock()
			}
		})
	}
}

// timeoutResponseWriter serializes writes between the handler goroutine and
// the timeout path. Only one of them ever writes the status line.
type timeoutResponseWriter struct {
	http.ResponseWriter
	h        http.Header
	mu       sync.Mutex
	timedOut bool
	written  bool
}

// Header returns the handler's private header map. It is copied onto the
// real response by writeHeaderLocked.
func (w *timeoutResponseWriter) Header() http.Header { return w.h }

func (w *timeoutResponseWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.timedOut && !w.written {
		w.writeHeaderLocked(statusCode)
	}
}

func (w *timeoutResponseWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !w.written {
		w.writeHeaderLocked(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// writeHeaderLocked replaces the real headers with the handler's and sends
// the status line. Caller must hold w.mu.
func (w *timeoutResponseWriter) writeHeaderLocked(statusCode int) {
	w.written = true
	dst := w.ResponseWriter.Header()
	clear(dst)
	for k, vv := range w.h {
		dst[k] = vv
	}
	w.ResponseWriter.WriteHeader(statusCode)
}
