package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// L1 is an in-process LFU backend backed by ristretto. Ristretto cannot
// enumerate its keys, so L1 keeps a key index next to it for pattern
// invalidation. The index may briefly list keys ristretto has already
// evicted; those are pruned on the next Get or Len.
type L1 struct {
	rc *ristretto.Cache[string, []byte]

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewL1 creates a new L1 backend holding up to maxEntries entries (each
// entry has a cost of 1).
func NewL1(maxEntries int64) (*L1, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Each entry costs 1; ristretto's own per-item overhead would
		// otherwise count against MaxCost.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &L1{
		rc:   rc,
		keys: make(map[string]struct{}),
	}, nil
}

// Get retrieves a copy of the bytes stored under key.
func (l *L1) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := l.rc.Get(key)
	if !ok {
		l.forget(key)
		return nil, false
	}
	return bytes.Clone(v), true
}

// Set stores a copy of val. The write is flushed before Set returns so an
// immediate Get observes it.
func (l *L1) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	if !l.rc.SetWithTTL(key, bytes.Clone(val), 1, ttl) {
		return
	}
	l.rc.Wait()

	l.mu.Lock()
	l.keys[key] = struct{}{}
	l.mu.Unlock()
}

// Delete removes key.
func (l *L1) Delete(_ context.Context, key string) {
	l.rc.Del(key)
	l.forget(key)
}

// Keys returns the indexed keys.
func (l *L1) Keys(_ context.Context) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	return out
}

// Clear drops every entry.
func (l *L1) Clear(_ context.Context) {
	l.rc.Clear()
	l.mu.Lock()
	clear(l.keys)
	l.mu.Unlock()
}

// Len prunes index entries ristretto no longer holds and returns the rest.
func (l *L1) Len(ctx context.Context) int {
	for _, k := range l.Keys(ctx) {
		if _, ok := l.rc.Get(k); !ok {
			l.forget(k)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Close stops ristretto's background goroutines.
func (l *L1) Close() error {
	l.rc.Close()
	return nil
}

func (l *L1) forget(key string) {
	l.mu.Lock()
	delete(l.keys, key)
	l.mu.Unlock()
}
