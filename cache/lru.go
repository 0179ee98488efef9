package cache

import (
	"bytes"
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is an in-process bounded LRU backend. It ignores the TTL hint; the
// Cache evicts expired envelopes lazily on read.
type LRU struct {
	cache *lru.Cache[string, []byte]
}

// NewLRU creates an LRU backend holding at most maxEntries entries.
func NewLRU(maxEntries int) (*LRU, error) {
	c, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

func (l *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := l.cache.Get(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

func (l *LRU) Set(_ context.Context, key string, val []byte, _ time.Duration) {
	l.cache.Add(key, bytes.Clone(val))
}

func (l *LRU) Delete(_ context.Context, key string) {
	l.cache.Remove(key)
}

func (l *LRU) Keys(_ context.Context) []string {
	return l.cache.Keys()
}

func (l *LRU) Clear(_ context.Context) {
	l.cache.Purge()
}

func (l *LRU) Len(_ context.Context) int {
	return l.cache.Len()
}

func (l *LRU) Close() error {
	l.cache.Purge()
	return nil
}
