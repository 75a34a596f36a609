package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws to h so the first middleware runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// RoutePolicy groups the admission middleware for one resource.
// Read guards public GETs, Write guards admin mutations, and Preflight
// answers OPTIONS requests.
type RoutePolicy struct {
	Read      []Middleware
	Write     []Middleware
	Preflight http.Handler
}
