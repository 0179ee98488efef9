package cache

import (
	"testing"
	"time"
)

func TestTiered_PromotesBackHits(t *testing.T) {
	front := mustNewL1(t)
	back, err := NewLRU(10)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	tc := NewTiered(front, back)
	ctx := t.Context()

	back.Set(ctx, "listAnalysts", []byte("from-back"), 0)

	v, ok := tc.Get(ctx, "listAnalysts")
	if !ok || string(v) != "from-back" {
		t.Fatalf("got %v %q", ok, v)
	}
	if _, ok := front.Get(ctx, "listAnalysts"); !ok {
		t.Fatal("back hit was not promoted into the front tier")
	}
}

func TestTiered_WritesAndDeletesBothTiers(t *testing.T) {
	front := mustNewL1(t)
	back, _ := NewLRU(10)
	tc := NewTiered(front, back)
	ctx := t.Context()

	tc.Set(ctx, "a", []byte("1"), time.Minute)
	if _, ok := front.Get(ctx, "a"); !ok {
		t.Fatal("front missing a")
	}
	if _, ok := back.Get(ctx, "a"); !ok {
		t.Fatal("back missing a")
	}

	back.Set(ctx, "b", []byte("2"), 0)
	if n := tc.Len(ctx); n != 2 {
		t.Fatalf("Len = %d, want 2 (union of tiers)", n)
	}

	tc.Delete(ctx, "a")
	if _, ok := tc.Get(ctx, "a"); ok {
		t.Fatal("a survived Delete")
	}

	tc.Clear(ctx)
	if n := tc.Len(ctx); n != 0 {
		t.Fatalf("Len after Clear = %d", n)
	}
}
