package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// StartCycle opens a span covering one full scheduler cycle.
func StartCycle(ctx context.Context) (context.Context, oteltrace.Span) {
	return Tracer().Start(ctx, "ingest.cycle")
}

// StartTraderFetch opens a span covering one trader's ingest within a
// cycle, tagged with the lead id for correlation in the exported trace.
func StartTraderFetch(ctx context.Context, leadID string) (context.Context, oteltrace.Span) {
	return Tracer().Start(ctx, "ingest.trader", oteltrace.WithAttributes(attribute.String("leadId", leadID)))
}

// EndWithError records err on span (if non-nil) and ends it.
func EndWithError(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
