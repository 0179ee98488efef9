package retry

import (
	"context"
	"testing"
	"time"

	"github.com/Keksclan/goRawrSheets/ops"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		RetryKinds:  []ops.ErrorKind{ops.KindTransport},
	}
}

func transportFailure() ops.Response {
	return ops.Fail(&ops.Error{Kind: ops.KindTransport, Msg: "timeout"})
}

func TestDo_RetriesTransportThenSucceeds(t *testing.T) {
	calls := 0
	resp := Do(t.Context(), fastConfig(4), func(context.Context) ops.Response {
		calls++
		if calls < 3 {
			return transportFailure()
		}
		return ops.OK([]byte(`"ok"`))
	})

	if !resp.Success || string(resp.Data) != `"ok"` {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsOnNonRetryableKind(t *testing.T) {
	calls := 0
	resp := Do(t.Context(), fastConfig(5), func(context.Context) ops.Response {
		calls++
		return ops.Fail(&ops.Error{Kind: ops.KindRemote, Msg: "candidate not found"})
	})

	if resp.Success || resp.Kind != ops.KindRemote {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	resp := Do(t.Context(), fastConfig(3), func(context.Context) ops.Response {
		calls++
		return transportFailure()
	})

	if resp.Success {
		t.Fatal("expected failure")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_SingleAttempt(t *testing.T) {
	calls := 0
	Do(t.Context(), fastConfig(0), func(context.Context) ops.Response {
		calls++
		return transportFailure()
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	cfg := Config{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    time.Second,
		RetryKinds:  []ops.ErrorKind{ops.KindTransport},
	}
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	start := time.Now()
	resp := Do(ctx, cfg, func(context.Context) ops.Response {
		calls++
		return transportFailure()
	})

	if resp.Success {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Do ignored cancellation, took %s", elapsed)
	}
}

func TestBackoff_Caps(t *testing.T) {
	cfg := Config{BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	if d := backoff(cfg, 0); d != 10*time.Millisecond {
		t.Fatalf("attempt 0: %s", d)
	}
	if d := backoff(cfg, 1); d != 20*time.Millisecond {
		t.Fatalf("attempt 1: %s", d)
	}
	if d := backoff(cfg, 10); d != 50*time.Millisecond {
		t.Fatalf("attempt 10: %s", d)
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	cfg := Config{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Jitter: 0.2}
	for range 100 {
		d := backoff(cfg, 0)
		if d < 80*time.Millisecond || d > 120*time.Millisecond {
			t.Fatalf("jittered delay %s out of bounds", d)
		}
	}
}
