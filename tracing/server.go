package tracing

import (
	"context"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	grpcCodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	grpcStatus "google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/contextx"
)

// RPC attribute keys set on diagnostics server spans.
const (
	AttrRPCSystem     = attribute.Key("rpc.system")
	AttrRPCService    = attribute.Key("rpc.service")
	AttrRPCMethod     = attribute.Key("rpc.method")
	AttrRPCStatusCode = attribute.Key("rpc.grpc.status_code")
	AttrRequestID     = attribute.Key("rawrsheets.request_id")
)

// serverFaults are the status codes that mark a server span as failed.
// Everything else is the caller's problem and leaves the status unset.
var serverFaults = map[grpcCodes.Code]bool{
	grpcCodes.Unknown:          true,
	grpcCodes.DeadlineExceeded: true,
	grpcCodes.Unimplemented:    true,
	grpcCodes.Internal:         true,
	grpcCodes.Unavailable:      true,
	grpcCodes.DataLoss:         true,
}

// UnaryServerInterceptor returns a [grpc.UnaryServerInterceptor] that
// creates a server span per diagnostics RPC, continuing any trace context
// found in the incoming metadata. A nil cfg yields a passthrough.
func UnaryServerInterceptor(cfg *TracingConfig) grpc.UnaryServerInterceptor {
	if cfg == nil {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			return handler(ctx, req)
		}
	}
	tracer := cfg.Tracer()
	prop := cfg.Propagator()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = prop.Extract(ctx, incomingCarrier(ctx))

		service, method := splitFullMethod(info.FullMethod)
		attrs := []attribute.KeyValue{
			AttrRPCSystem.String("grpc"),
			AttrRPCService.String(service),
			AttrRPCMethod.String(method),
		}
		if id := contextx.RequestIDFromContext(ctx); id != "" {
			attrs = append(attrs, AttrRequestID.String(id))
		}
		ctx, span := tracer.Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		resp, err := handler(ctx, req)
		endRPC(span, err)
		return resp, err
	}
}

// incomingCarrier exposes the first value of every incoming metadata key
// to the propagator.
func incomingCarrier(ctx context.Context) propagation.MapCarrier {
	md, _ := metadata.FromIncomingContext(ctx)
	c := make(propagation.MapCarrier, len(md))
	for k, v := range md {
		if len(v) > 0 {
			c[k] = v[0]
		}
	}
	return c
}

// splitFullMethod splits "/service/method" into ("service", "method").
func splitFullMethod(fullMethod string) (service, method string) {
	dir, base := path.Split(strings.TrimPrefix(fullMethod, "/"))
	if dir == "" {
		return base, ""
	}
	return strings.TrimSuffix(dir, "/"), base
}

func endRPC(span trace.Span, err error) {
	st, _ := grpcStatus.FromError(err)
	span.SetAttributes(AttrRPCStatusCode.String(st.Code().String()))
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case serverFaults[st.Code()]:
		span.RecordError(err)
		span.SetStatus(codes.Error, st.Message())
	default:
		span.AddEvent("rejected", trace.WithAttributes(attribute.String("message", st.Message())))
	}
}
