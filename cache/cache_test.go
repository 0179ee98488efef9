package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/policy"
)

// fakeClock is a manually advanced clock.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(t *testing.T, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	b, err := NewLRU(100)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	clk := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := New(b, append([]Option{WithClock(clk.Now)}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c, clk
}

func resp(data string) ops.Response {
	return ops.OK([]byte(data))
}

func TestCache_SetThenGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := t.Context()

	c.Set(ctx, "listCandidates", resp(`[1,2]`), 30*time.Second)

	got, ok := c.Get(ctx, "listCandidates")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got.Data) != `[1,2]` {
		t.Fatalf("got %s", got.Data)
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c, clk := newTestCache(t)
	ctx := t.Context()

	c.Set(ctx, "k", resp(`1`), 30*time.Second)

	clk.Advance(29*time.Second + 999*time.Millisecond)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected hit just before TTL")
	}

	clk.Advance(time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss at TTL")
	}
	if n := c.Len(ctx); n != 0 {
		t.Fatalf("expired entry not evicted: Len = %d", n)
	}
}

func TestCache_ZeroTTLNeverCaches(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := t.Context()

	c.Set(ctx, "k", resp(`1`), time.Minute)
	c.Set(ctx, "k", resp(`2`), 0)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("zero TTL must behave as never cached")
	}

	// Sub-millisecond TTLs truncate to zero.
	c.Set(ctx, "k", resp(`3`), 500*time.Microsecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("sub-millisecond TTL must behave as never cached")
	}
}

func TestCache_SetOverwrites(t *testing.T) {
	c, clk := newTestCache(t)
	ctx := t.Context()

	c.Set(ctx, "k", resp(`1`), 10*time.Second)
	clk.Advance(8 * time.Second)
	c.Set(ctx, "k", resp(`2`), 10*time.Second)
	clk.Advance(8 * time.Second)

	got, ok := c.Get(ctx, "k")
	if !ok || string(got.Data) != `2` {
		t.Fatalf("expected overwritten value with fresh TTL, got %v %s", ok, got.Data)
	}
}

func TestCache_RefusesFailedResponses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := t.Context()

	c.Set(ctx, "k", ops.Fail(ops.ErrRemote), time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("failed responses must never be cached")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	b, _ := NewLRU(10)
	c := New(b)
	ctx := context.Background()

	for _, raw := range []string{`not json`, `{}`, `{"value":{"success":true},"storedAt":1,"ttlMs":0}`} {
		b.Set(ctx, "k", []byte(raw), time.Minute)
		if _, ok := c.Get(ctx, "k"); ok {
			t.Fatalf("corrupt entry %q served as hit", raw)
		}
		if _, ok := b.Get(ctx, "k"); ok {
			t.Fatalf("corrupt entry %q not evicted", raw)
		}
	}
}

func TestCache_InvalidateMatching(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := t.Context()

	keys := []string{
		ops.Key(ops.ListCandidates, nil),
		ops.Key(ops.GetCandidatesByStatus, ops.Params{"status": "Classificado"}),
		ops.Key(ops.GetCandidatesByStatus, ops.Params{"status": "Desclassificado"}),
		ops.Key(ops.ListAnalysts, nil),
	}
	for _, k := range keys {
		c.Set(ctx, k, resp(`[]`), time.Minute)
	}

	n := c.InvalidateMatching(ctx, policy.Operation(ops.GetCandidatesByStatus))
	if n != 2 {
		t.Fatalf("removed %d keys, want 2", n)
	}
	if _, ok := c.Get(ctx, keys[0]); !ok {
		t.Fatal("unrelated key was invalidated")
	}
	if _, ok := c.Get(ctx, keys[3]); !ok {
		t.Fatal("unrelated key was invalidated")
	}
	if _, ok := c.Get(ctx, keys[1]); ok {
		t.Fatal("matching key survived")
	}
}

func TestCache_InvalidateAndClear(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := t.Context()

	c.Set(ctx, "a", resp(`1`), time.Minute)
	c.Set(ctx, "b", resp(`2`), time.Minute)

	c.Invalidate(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("expected miss after Invalidate")
	}

	c.Clear(ctx)
	if n := c.Len(ctx); n != 0 {
		t.Fatalf("Len after Clear = %d", n)
	}
}

func TestCache_Disabled(t *testing.T) {
	c, _ := newTestCache(t, WithEnabled(false))
	ctx := t.Context()

	c.Set(ctx, "k", resp(`1`), time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("disabled cache must not serve entries")
	}
	if c.Enabled() {
		t.Fatal("Enabled() should be false")
	}
}

func TestCache_OverL1(t *testing.T) {
	l := mustNewL1(t)
	c := New(l)
	ctx := t.Context()

	c.Set(ctx, "getReportStats", resp(`{"total":3}`), time.Minute)
	got, ok := c.Get(ctx, "getReportStats")
	if !ok || string(got.Data) != `{"total":3}` {
		t.Fatalf("got %v %s", ok, got.Data)
	}
}
