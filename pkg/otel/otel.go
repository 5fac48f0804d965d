package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/trace"
)

// SetupSDK bootstraps the OpenTelemetry pipeline. The exporter is configured through the
// standard OTEL_EXPORTER_OTLP_* environment variables.
// If it does not return an error, make sure to call shutdown so pending spans are flushed.
func SetupSDK(ctx context.Context) (func(context.Context) error, error) {
	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
	)

	otel.SetTracerProvider(tracerProvider)

	return tracerProvider.Shutdown, nil
}
