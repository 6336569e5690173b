package server

import (
	"net/http"
)

var default_mux = http.NewServeMux()

// Register adds a handler to the default handlers served by
// servers created with default handling.
func Register(pattern string, handler http.Handler) {
	default_mux.Handle(pattern, handler)
}
