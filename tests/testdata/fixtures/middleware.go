package httpapi

import (
	"log"
	"net/http"
	"time"
)

const (
	headerRequestID = "X-Request-Id"
	slowThreshold   = 500 * time.Millisecond
)

// Middleware wraps a handler with extra request behavior.
type Middleware func(Handler) Handler

// Chain applies middlewares right to left, so the first one listed
// sees the request first.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging logs one line per request and flags slow responses.
func Logging(logger *log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.Handle(w, r)
			elapsed := time.Since(start)
			if elapsed > slowThreshold {
				logger.Printf("slow: %s %s took %s", r.Method, r.URL.Path, elapsed)
				return
			}
			logger.Printf("%s %s %s", r.Method, r.URL.Path, elapsed)
		})
	}
}

// RequestID copies the request id header onto the response so clients
// can correlate log lines.
func RequestID(next Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(headerRequestID); id != "" {
			w.Header().Set(headerRequestID, id)
		}
		next.Handle(w, r)
	})
}
