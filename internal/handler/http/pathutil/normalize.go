// Package pathutil maps request paths to route templates for metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the routes that carry an ID segment. IDs are opaque
// strings (uuids or the literal "add").
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/api/skills/[^/]+$`), Template: "/api/skills/:id"},
	{Pattern: regexp.MustCompile(`^/api/projects/[^/]+$`), Template: "/api/projects/:id"},
}

// NormalizePath converts paths with IDs (e.g. /api/skills/5f0c...) to their
// template (/api/skills/:id) so metric labels stay bounded. Query strings and
// trailing slashes are dropped; unknown paths pass through unchanged.
//
//	NormalizePath("/api/projects/add")        // "/api/projects/:id"
//	NormalizePath("/api/projects?lang=ja")    // "/api/projects"
//	NormalizePath("/health")                  // "/health"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}

// ExpectedCardinality returns the approximate number of distinct path labels
// the API produces after normalization.
func ExpectedCardinality() int {
	const static = 10 // health, ready, metrics, login, logout, session, list routes
	return len(pathPatterns) + static
}
