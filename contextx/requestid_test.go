package contextx

import "testing"

func TestWithRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(t.Context(), "req-abc-123")
	got := RequestIDFromContext(ctx)
	if got != "req-abc-123" {
		t.Fatalf("got %q, want %q", got, "req-abc-123")
	}
}

func TestRequestIDFromContextMissing(t *testing.T) {
	got := RequestIDFromContext(t.Context())
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(t.Context())
	if id == "" || RequestIDFromContext(ctx) != id {
		t.Fatalf("EnsureRequestID did not attach an ID: %q", id)
	}

	again, same := EnsureRequestID(ctx)
	if same != id || again != ctx {
		t.Fatalf("existing ID replaced: %q -> %q", id, same)
	}

	if NewRequestID() == NewRequestID() {
		t.Fatal("request IDs collide")
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := WithSessionID(t.Context(), "sess-1")
	if got := SessionIDFromContext(ctx); got != "sess-1" {
		t.Fatalf("got %q", got)
	}
	if got := SessionIDFromContext(t.Context()); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
