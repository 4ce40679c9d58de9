// Package httpapi is a small JSON API server used as an indexing fixture.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
)

// Server routes API requests to registered handlers.
type Server struct {
	mux      *http.ServeMux
	handlers map[string]Handler
	mu       sync.RWMutex
}

// New returns a Server with an empty handler table.
func New() *Server {
	return &Server{
		mux:      http.NewServeMux(),
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for the given route, replacing any existing one.
func (s *Server) Register(route string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[route] = h
}

// ServeHTTP dispatches one request to the matching handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h, ok := s.handlers[r.URL.Path]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.Handle(w, r)
}

// writeJSON encodes v onto w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
