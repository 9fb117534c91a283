// Package telemetry bootstraps the OpenTelemetry tracer provider and
// exposes span helpers for the ingest cycle and per-trader fetch.
package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "copytrade-ingestor"

// SetupOTelSDK bootstraps a stdout-exporting tracer provider and installs
// it globally, returning a shutdown func to call on process exit.
func SetupOTelSDK(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		for _, fn := range shutdownFuncs {
			if err := fn(ctx); err != nil {
				log.Printf("telemetry shutdown error: %v", err)
			}
		}
		shutdownFuncs = nil
		return nil
	}

	handleErr := func(inErr error) {
		err = inErr
		if err != nil {
			shutdown(ctx)
		}
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		handleErr(err)
		return
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		handleErr(err)
		return
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	return
}

// Tracer returns the package-wide tracer, resolved lazily against
// whatever provider SetupOTelSDK installed (or the global no-op provider
// if it was never called, e.g. in tests).
func Tracer() oteltrace.Tracer {
	return otel.Tracer(tracerName)
}
