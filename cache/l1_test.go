package cache

import (
	"fmt"
	"slices"
	"testing"
	"time"
)

func mustNewL1(t *testing.T) *L1 {
	t.Helper()
	l, err := NewL1(1000)
	if err != nil {
		t.Fatalf("NewL1: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestL1_GetSet(t *testing.T) {
	l := mustNewL1(t)
	ctx := t.Context()

	if _, ok := l.Get(ctx, "k1"); ok {
		t.Fatal("expected miss")
	}

	l.Set(ctx, "k1", []byte("v1"), time.Minute)
	val, ok := l.Get(ctx, "k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(val) != "v1" {
		t.Fatalf("got %q, want %q", val, "v1")
	}
}

func TestL1_ReturnsCopies(t *testing.T) {
	l := mustNewL1(t)
	ctx := t.Context()

	src := []byte("abc")
	l.Set(ctx, "k", src, time.Minute)
	src[0] = 'x'

	got, _ := l.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[1] = 'y'
	again, _ := l.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased stored slice: %q", again)
	}
}

func TestL1_KeysAndDelete(t *testing.T) {
	l := mustNewL1(t)
	ctx := t.Context()

	l.Set(ctx, "a", []byte("1"), time.Minute)
	l.Set(ctx, "b", []byte("2"), time.Minute)

	keys := l.Keys(ctx)
	slices.Sort(keys)
	if !slices.Equal(keys, []string{"a", "b"}) {
		t.Fatalf("got keys %v", keys)
	}

	l.Delete(ctx, "a")
	if _, ok := l.Get(ctx, "a"); ok {
		t.Fatal("expected miss after delete")
	}
	if n := l.Len(ctx); n != 1 {
		t.Fatalf("Len = %d, want 1", n)
	}

	l.Clear(ctx)
	if n := l.Len(ctx); n != 0 {
		t.Fatalf("Len after Clear = %d, want 0", n)
	}
}

func TestL1_TTLExpires(t *testing.T) {
	l := mustNewL1(t)
	ctx := t.Context()

	l.Set(ctx, "ttl", []byte("temp"), 50*time.Millisecond)

	if _, ok := l.Get(ctx, "ttl"); !ok {
		t.Fatal("expected hit before TTL")
	}

	// Ristretto cleanup may need a bit of extra time.
	time.Sleep(200 * time.Millisecond)

	if _, ok := l.Get(ctx, "ttl"); ok {
		t.Fatal("expected miss after TTL")
	}
	if n := l.Len(ctx); n != 0 {
		t.Fatalf("expired key still indexed: Len = %d", n)
	}
}

func TestL1_HoldsMaxEntries(t *testing.T) {
	const maxEntries = 10
	l, err := NewL1(maxEntries)
	if err != nil {
		t.Fatalf("NewL1: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	ctx := t.Context()

	for i := range maxEntries {
		l.Set(ctx, fmt.Sprintf("listCandidates?page=%d", i), []byte(`{"success":true}`), time.Minute)
	}
	for i := range maxEntries {
		key := fmt.Sprintf("listCandidates?page=%d", i)
		if _, ok := l.Get(ctx, key); !ok {
			t.Fatalf("%s missing from a cache sized for %d entries", key, maxEntries)
		}
	}
	if n := l.Len(ctx); n != maxEntries {
		t.Fatalf("Len = %d, want %d", n, maxEntries)
	}
}

func TestLRU_Backend(t *testing.T) {
	l, err := NewLRU(2)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	ctx := t.Context()

	l.Set(ctx, "a", []byte("1"), 0)
	l.Set(ctx, "b", []byte("2"), 0)
	l.Set(ctx, "c", []byte("3"), 0) // evicts "a"

	if _, ok := l.Get(ctx, "a"); ok {
		t.Fatal("expected a to be evicted")
	}
	if n := l.Len(ctx); n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
}

func TestNewBackend(t *testing.T) {
	for _, kind := range []string{"", BackendLFU, BackendLRU} {
		b, err := NewBackend(BackendConfig{Kind: kind, MaxEntries: 10}, "s1")
		if err != nil {
			t.Fatalf("NewBackend(%q): %v", kind, err)
		}
		_ = b.Close()
	}

	if _, err := NewBackend(BackendConfig{Kind: BackendRedis}, "s1"); err == nil {
		t.Fatal("expected error for redis without address")
	}
	if _, err := NewBackend(BackendConfig{Kind: "memcached"}, "s1"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
