package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Attribute keys set on operation spans.
const (
	AttrOperation = attribute.Key("rawrsheets.operation")
	AttrKind      = attribute.Key("rawrsheets.kind")
	AttrCacheHit  = attribute.Key("rawrsheets.cache_hit")
	AttrShared    = attribute.Key("rawrsheets.dedup_shared")
	AttrErrorKind = attribute.Key("rawrsheets.error_kind")
)

// StartOperation starts an internal span named "<prefix> <op>" for one
// orchestrated call.
func StartOperation(ctx context.Context, cfg *TracingConfig, prefix string, op ops.Operation) (context.Context, trace.Span) {
	return cfg.Tracer().Start(ctx, prefix+" "+op.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrOperation.String(op.String()),
			AttrKind.String(op.Kind().String()),
		),
	)
}

// EndOperation records the outcome carried by resp and ends span.
func EndOperation(span trace.Span, resp ops.Response) {
	defer span.End()
	if resp.Success {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.SetAttributes(AttrErrorKind.String(resp.Kind.String()))
	span.RecordError(errors.New(resp.Error))
	span.SetStatus(codes.Error, resp.Error)
}
