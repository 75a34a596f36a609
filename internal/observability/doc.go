// Package observability groups the service's logging, metrics and tracing
// support.
//
// Subpackages:
//   - logging: slog JSON loggers and request-scoped context propagation
//   - metrics: database, circuit breaker and background job metrics
//   - tracing: OpenTelemetry tracer setup and HTTP middleware
package observability
