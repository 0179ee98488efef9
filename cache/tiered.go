package cache

import (
	"context"
	"time"
)

// Tiered combines an in-process front backend with a Redis back backend.
// Reads check the front first, then the back; a back hit is promoted into
// the front. Writes and deletes go to both.
type Tiered struct {
	front Backend
	back  Backend
}

// NewTiered creates a two-level backend.
func NewTiered(front, back Backend) *Tiered {
	return &Tiered{front: front, back: back}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.front.Get(ctx, key); ok {
		return v, true
	}
	v, ok := t.back.Get(ctx, key)
	if !ok {
		return nil, false
	}
	// The remaining TTL is unknown here; the envelope still carries the
	// original expiry, so the Cache evicts the promoted copy on time.
	t.front.Set(ctx, key, v, 0)
	return v, true
}

func (t *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	t.back.Set(ctx, key, val, ttl)
	t.front.Set(ctx, key, val, ttl)
}

func (t *Tiered) Delete(ctx context.Context, key string) {
	t.back.Delete(ctx, key)
	t.front.Delete(ctx, key)
}

// Keys returns the union of both tiers.
func (t *Tiered) Keys(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range []Backend{t.front, t.back} {
		for _, k := range b.Keys(ctx) {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func (t *Tiered) Clear(ctx context.Context) {
	t.back.Clear(ctx)
	t.front.Clear(ctx)
}

func (t *Tiered) Len(ctx context.Context) int {
	return len(t.Keys(ctx))
}

func (t *Tiered) Close() error {
	ferr := t.front.Close()
	berr := t.back.Close()
	if ferr != nil {
		return ferr
	}
	return berr
}
