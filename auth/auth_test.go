package auth_test

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/auth"
	"github.com/Keksclan/goRawrSheets/contextx"
	"github.com/Keksclan/goRawrSheets/interceptors"
)

var admin = contextx.Actor{Subject: "ops", Role: contextx.RoleAdmin}

func incoming(t *testing.T, kv ...string) context.Context {
	t.Helper()
	return metadata.NewIncomingContext(t.Context(), metadata.Pairs(kv...))
}

func codeOf(err error) codes.Code {
	st, _ := status.FromError(err)
	return st.Code()
}

func TestBearerToken(t *testing.T) {
	fn := auth.BearerToken("s3cret", admin)

	tests := []struct {
		name string
		md   metadata.MD
		ok   bool
	}{
		{"valid", metadata.Pairs("authorization", "Bearer s3cret"), true},
		{"missing", metadata.MD{}, false},
		{"wrong token", metadata.Pairs("authorization", "Bearer nope"), false},
		{"no scheme", metadata.Pairs("authorization", "s3cret"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := fn(t.Context(), "/svc/M", tc.md)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				a, ok := contextx.ActorFromContext(ctx)
				if !ok || a.Subject != "ops" {
					t.Fatalf("actor not injected: %+v", a)
				}
				return
			}
			if codeOf(err) != codes.Unauthenticated {
				t.Fatalf("expected Unauthenticated, got %v", err)
			}
		})
	}
}

func TestAuthUnary_MissingAuth(t *testing.T) {
	ic := interceptors.AuthUnary(auth.BearerToken("s3cret", admin))

	handler := func(_ context.Context, _ any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := ic(t.Context(), "req", &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}, handler)
	if codeOf(err) != codes.Unauthenticated {
		t.Fatalf("expected codes.Unauthenticated, got %v", err)
	}
}

func TestAuthUnary_ValidTokenInjectsActor(t *testing.T) {
	ic := interceptors.AuthUnary(auth.BearerToken("s3cret", admin))
	ctx := incoming(t, "authorization", "Bearer s3cret")

	var got contextx.Actor
	_, err := ic(ctx, "req", &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}, func(ctx context.Context, _ any) (any, error) {
		got, _ = contextx.ActorFromContext(ctx)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Role != contextx.RoleAdmin {
		t.Fatalf("expected admin actor, got %+v", got)
	}
}

func TestAuthUnary_PublicMethodSkipsAuth(t *testing.T) {
	ic := interceptors.AuthUnary(auth.BearerToken("s3cret", admin), "/svc/Ping")

	called := false
	_, err := ic(t.Context(), "req", &grpc.UnaryServerInfo{FullMethod: "/svc/Ping"}, func(context.Context, any) (any, error) {
		called = true
		return "pong", nil
	})
	if err != nil || !called {
		t.Fatalf("public method was not passed through: called=%v err=%v", called, err)
	}
}

func TestAuthUnary_PlainErrorBecomesUnauthenticated(t *testing.T) {
	fn := func(ctx context.Context, _ string, _ metadata.MD) (context.Context, error) {
		return ctx, context.DeadlineExceeded
	}
	ic := interceptors.AuthUnary(fn)
	_, err := ic(t.Context(), "req", &grpc.UnaryServerInfo{FullMethod: "/svc/M"}, func(context.Context, any) (any, error) {
		return nil, nil
	})
	if codeOf(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestCredentials(t *testing.T) {
	ctx := auth.Credentials(t.Context(), "s3cret")
	md, _ := metadata.FromOutgoingContext(ctx)
	if v := md.Get("authorization"); len(v) != 1 || v[0] != "Bearer s3cret" {
		t.Fatalf("outgoing metadata = %v", v)
	}
}
