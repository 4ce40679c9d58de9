package httpapi

import "net/http"

// Handler is implemented by anything that can handle one request.
type Handler interface {
	Handle(w http.ResponseWriter, r *http.Request)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(w http.ResponseWriter, r *http.Request)

// Handle calls the wrapped function.
func (f HandlerFunc) Handle(w http.ResponseWriter, r *http.Request) {
	f(w, r)
}
