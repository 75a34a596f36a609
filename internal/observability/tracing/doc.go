// Package tracing wires OpenTelemetry into the HTTP stack.
//
// Setup installs the tracer provider (optionally exporting spans as JSON
// through the stdout exporter) and Middleware opens one server span per
// request. The access log picks the trace ID up from the request context.
package tracing
