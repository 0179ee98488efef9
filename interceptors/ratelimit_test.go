package interceptors

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrSheets/ratelimit"
)

// okHandler is a trivial handler that always succeeds.
func okHandler(_ context.Context, _ any) (any, error) { return "ok", nil }

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	st, _ := status.FromError(err)
	return st.Code()
}

func TestRateLimitUnary_GlobalOnly(t *testing.T) {
	global := ratelimit.NewLimiter(0.001, 2) // burst 2, nearly no refill
	ic := RateLimitUnary(global, nil)

	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}

	for i := range 2 {
		if _, err := ic(t.Context(), nil, info, okHandler); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	_, err := ic(t.Context(), nil, info, okHandler)
	if codeOf(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", codeOf(err))
	}
}

func TestRateLimitUnary_PerMethodOverridesGlobal(t *testing.T) {
	global := ratelimit.NewLimiter(1000, 100)
	heavy := "/rawrsheets.Diagnostics/ClearCache"
	ic := RateLimitUnary(global, map[string]*ratelimit.Limiter{
		heavy: ratelimit.NewLimiter(0.001, 1),
	})

	heavyInfo := &grpc.UnaryServerInfo{FullMethod: heavy}
	if _, err := ic(t.Context(), nil, heavyInfo, okHandler); err != nil {
		t.Fatalf("first heavy request: %v", err)
	}
	if _, err := ic(t.Context(), nil, heavyInfo, okHandler); codeOf(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", codeOf(err))
	}

	// Other methods still draw from the generous global bucket.
	light := &grpc.UnaryServerInfo{FullMethod: "/rawrsheets.Diagnostics/Ping"}
	for i := range 10 {
		if _, err := ic(t.Context(), nil, light, okHandler); err != nil {
			t.Fatalf("light request %d: %v", i, err)
		}
	}
}

func TestRateLimitUnary_NilGlobalIsUnlimited(t *testing.T) {
	ic := RateLimitUnary(nil, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}
	for i := range 50 {
		if _, err := ic(t.Context(), nil, info, okHandler); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
}
