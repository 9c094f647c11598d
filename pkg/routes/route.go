// Package routes declares handler groups and mounts them on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and a pattern relative to its group prefix.
// Pattern may be empty to serve the prefix itself.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
