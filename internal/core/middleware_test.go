package core

import (
	"context"
	"testing"

	"google.golang.org/grpc"
)

func TestBuildServerOptions(t *testing.T) {
	if n := len(BuildServerOptions(nil)); n != 0 {
		t.Fatalf("empty chain produced %d options", n)
	}
	noop := func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		return h(ctx, req)
	}
	opts := BuildServerOptions([]grpc.UnaryServerInterceptor{noop}, grpc.MaxRecvMsgSize(1<<20))
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2", len(opts))
	}
}
