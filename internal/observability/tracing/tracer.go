package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/crljhnmngs/portfolio-admin/pkg/config"
)

// ServiceName identifies this service in spans.
const ServiceName = "portfolio-admin"

// Tracer returns the service tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// Config controls tracer setup.
type Config struct {
	Enabled bool
	// Exporter is "stdout" (JSON spans on Writer) or "none" (spans are
	// sampled and carry IDs for log correlation but are not exported).
	Exporter string
	Version  string
	Writer   io.Writer
}

// LoadConfig reads TRACING_ENABLED and TRACING_EXPORTER.
func LoadConfig(version string) Config {
	return Config{
		Enabled:  config.GetEnvBool("TRACING_ENABLED", false),
		Exporter: strings.ToLower(config.GetEnvString("TRACING_EXPORTER", "none")),
		Version:  version,
		Writer:   os.Stderr,
	}
}

// Setup installs the global tracer provider and W3C propagator. The
// returned shutdown flushes pending spans; it is a no-op when tracing is
// disabled.
func Setup(cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	if !cfg.Enabled {
		return noop, nil
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", cfg.Version),
		)),
	}

	switch cfg.Exporter {
	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return noop, fmt.Errorf("stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	case "", "none":
	default:
		return noop, fmt.Errorf("unknown TRACING_EXPORTER %q", cfg.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
