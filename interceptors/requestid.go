package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/Keksclan/goRawrSheets/contextx"
)

// RequestIDHeader is the metadata key a request ID is read from and echoed
// back in.
const RequestIDHeader = "x-request-id"

// RequestIDUnary returns a unary server interceptor that puts a request ID
// in the context: the caller's x-request-id if present, otherwise a fresh
// one. The ID is echoed in the response header.
func RequestIDUnary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(RequestIDHeader); len(vals) > 0 && vals[0] != "" {
				ctx = contextx.WithRequestID(ctx, vals[0])
			}
		}
		ctx, id := contextx.EnsureRequestID(ctx)
		// SetHeader fails outside a real transport stream, e.g. in unit
		// tests calling the interceptor directly.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(ctx, req)
	}
}
