package interceptors

import (
	"context"
	"slices"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/auth"
)

var errUnauthenticated = status.Error(codes.Unauthenticated, "unauthenticated")

// authError keeps status errors from the AuthFunc and hides anything else
// behind a bare Unauthenticated.
func authError(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return err
	}
	return errUnauthenticated
}

// AuthUnary returns a unary server interceptor that calls fn before the
// handler. Methods listed in public skip authentication.
func AuthUnary(fn auth.AuthFunc, public ...string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if slices.Contains(public, info.FullMethod) {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		newCtx, err := fn(ctx, info.FullMethod, md)
		if err != nil {
			return nil, authError(err)
		}
		return handler(newCtx, req)
	}
}
