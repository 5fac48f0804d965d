package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName   = "github.com/kyma-project/cloud-pricing-collector"
	runIDAttr    = "run_id"
	providerAttr = "provider"
)

// StartRunSpan starts the span covering a whole collection run.
func StartRunSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "collect",
		trace.WithAttributes(attribute.String(runIDAttr, runID)),
	)
}

// StartProviderSpan starts the span of one provider task.
func StartProviderSpan(ctx context.Context, runID, provider string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "collect/"+provider,
		trace.WithAttributes(
			attribute.String(runIDAttr, runID),
			attribute.String(providerAttr, provider),
		),
	)
}
