package core

import "google.golang.org/grpc"

// BuildServerOptions turns an ordered interceptor slice into the
// grpc.ServerOption values passed to grpc.NewServer.
func BuildServerOptions(unary []grpc.UnaryServerInterceptor, extra ...grpc.ServerOption) []grpc.ServerOption {
	opts := make([]grpc.ServerOption, 0, len(extra)+1)
	if len(unary) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(unary...))
	}
	return append(opts, extra...)
}
