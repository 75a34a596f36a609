// Package csp builds Content-Security-Policy header values.
package csp

import (
	"sort"
	"strings"
)

// Header names for enforced and report-only policies.
const (
	HeaderName           = "Content-Security-Policy"
	ReportOnlyHeaderName = "Content-Security-Policy-Report-Only"
)

// Policy is a set of CSP directives. The zero value is an empty policy.
// A Policy is not safe for concurrent mutation; build it once at startup.
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// New returns an empty policy.
func New() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

// Directive sets name to sources, replacing any earlier value.
// Directives without sources (upgrade-insecure-requests) are allowed.
func (p *Policy) Directive(name string, sources ...string) *Policy {
	if p.directives == nil {
		p.directives = make(map[string][]string)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return p
	}
	p.directives[name] = append([]string(nil), sources...)
	return p
}

// ReportOnly switches the policy to report-only mode.
func (p *Policy) ReportOnly(enabled bool) *Policy {
	p.reportOnly = enabled
	return p
}

// Header returns the header name the policy is sent under.
func (p *Policy) Header() string {
	if p.reportOnly {
		return ReportOnlyHeaderName
	}
	return HeaderName
}

// String renders the policy. default-src comes first and the remaining
// directives follow in name order, so the output is stable.
func (p *Policy) String() string {
	if len(p.directives) == 0 {
		return ""
	}
	names := make([]string, 0, len(p.directives))
	for name := range p.directives {
		if name != "default-src" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := p.directives["default-src"]; ok {
		names = append([]string{"default-src"}, names...)
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if srcs := p.directives[name]; len(srcs) > 0 {
			parts = append(parts, name+" "+strings.Join(srcs, " "))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "; ")
}

// APIPolicy is the policy for JSON-only responses: nothing may load and
// nothing may frame the response.
func APIPolicy() *Policy {
	return New().
		Directive("default-src", "'none'").
		Directive("frame-ancestors", "'none'").
		Directive("base-uri", "'none'").
		Directive("form-action", "'none'")
}
