// Package tracing wraps OpenTelemetry span bookkeeping for service operations.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used when none is injected.
const InstrumentationName = "claimledger/claims"

// Tracer returns t, or the globally registered tracer when t is nil.
func Tracer(t trace.Tracer) trace.Tracer {
	if t == nil {
		return otel.Tracer(InstrumentationName)
	}
	return t
}

// TrackOperation starts an internal span and returns a function that ends it,
// marking the span as failed when the operation returned an error. result is
// the short outcome label (an error code or "ok") recorded on the span.
func TrackOperation(ctx context.Context, t trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, func(err error, result string)) {
	ctx, span := Tracer(t).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error, result string) {
		span.SetAttributes(attribute.String("claims.result", result))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
