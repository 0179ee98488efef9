package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/ratelimit"
)

var errRateLimited = status.Error(codes.ResourceExhausted, "rate limit exceeded")

// RateLimitUnary returns a unary server interceptor that rejects requests
// once the applicable limiter is exhausted. A method listed in perMethod
// uses its own limiter; every other method shares global. A nil global
// leaves unlisted methods unlimited.
func RateLimitUnary(global *ratelimit.Limiter, perMethod map[string]*ratelimit.Limiter) grpc.UnaryServerInterceptor {
	limiters := make(map[string]*ratelimit.Limiter, len(perMethod))
	for m, l := range perMethod {
		limiters[m] = l
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		l, ok := limiters[info.FullMethod]
		if !ok {
			l = global
		}
		if l != nil && !l.Allow() {
			return nil, errRateLimited
		}
		return handler(ctx, req)
	}
}
