// Package tracing wraps the OpenTelemetry API for service operations. Without
// a configured TracerProvider the spans are no-ops.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Start opens a span named op on the tracer for scope.
func Start(ctx context.Context, scope, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(scope).Start(ctx, op, trace.WithAttributes(attrs...))
}

// End records err on span, if set, and ends it. Use with a named error result:
//
//	ctx, span := tracing.Start(ctx, scope, "policy.Create")
//	defer func() { tracing.End(span, err) }()
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
