// Package metrics exposes cross-cutting Prometheus metrics on the default
// registry, served by the /metrics endpoint.
//
// HTTP request metrics live in internal/handler/http, authentication metrics
// in internal/handler/http/auth and rate limit metrics in pkg/ratelimit.
package metrics
