package middleware

import (
	"net/http"
	"strings"
)

// Headers returned on admitted cross-origin reads and preflights.
const (
	CORSAllowMethods = "GET, OPTIONS"
	CORSAllowHeaders = "Content-Type, x-api-key"
)

// OriginValidator decides which browser origins may call the public API.
type OriginValidator interface {
	// IsAllowed reports whether origin may be served. Empty origins are
	// never allowed.
	IsAllowed(origin string) bool

	// AllowedOrigins returns a copy of the configured origins for logging.
	AllowedOrigins() []string
}

// AllowList is an exact-match OriginValidator.
//
// Origins are compared byte for byte after trimming surrounding spaces from
// the configured entries. An empty list allows nothing.
type AllowList struct {
	origins map[string]struct{}
	ordered []string
}

// NewAllowList creates an AllowList. Blank entries are dropped.
func NewAllowList(origins []string) *AllowList {
	l := &AllowList{origins: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if _, dup := l.origins[origin]; dup {
			continue
		}
		l.origins[origin] = struct{}{}
		l.ordered = append(l.ordered, origin)
	}
	return l
}

// IsAllowed implements OriginValidator.
func (l *AllowList) IsAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	_, ok := l.origins[origin]
	return ok
}

// AllowedOrigins implements OriginValidator.
func (l *AllowList) AllowedOrigins() []string {
	out := make([]string, len(l.ordered))
	copy(out, l.ordered)
	return out
}

// SetCORSHeaders echoes origin back with the allowed methods and headers.
// Callers must have validated origin first.
func SetCORSHeaders(w http.ResponseWriter, origin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", CORSAllowMethods)
	h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
	h.Add("Vary", "Origin")
}
