// Package cache provides the session-scoped TTL read cache. Entries are
// stored as encoded envelopes in a pluggable Backend: an in-process
// ristretto (LFU) or LRU store, a session-namespaced Redis store, or a
// tiered combination of one in-process store in front of Redis.
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/policy"
)

// Backend is a byte store the Cache keeps its envelopes in. Backends fail
// soft: errors are reported as misses or silently dropped writes, never
// surfaced to callers.
type Backend interface {
	// Get returns the stored bytes for key.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores val under key. ttl is a reclamation hint; validity is
	// decided by the Cache from the envelope, not by the backend.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string)

	// Keys lists the keys currently held.
	Keys(ctx context.Context) []string

	// Clear removes every key owned by this backend.
	Clear(ctx context.Context)

	// Len reports how many keys are held.
	Len(ctx context.Context) int

	// Close releases resources.
	Close() error
}

// Cache is the TTL cache consulted by the orchestrator before any read goes
// to the network. All methods are safe for concurrent use and never fail:
// an unreadable or expired entry is simply a miss.
type Cache struct {
	backend Backend
	codec   Codec
	now     func() time.Time
	enabled bool
	logger  *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, letting tests advance time deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithCodec replaces the default JSON envelope codec.
func WithCodec(codec Codec) Option {
	return func(c *Cache) { c.codec = codec }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithEnabled turns the cache on or off. A disabled cache reports every
// lookup as a miss and stores nothing.
func WithEnabled(enabled bool) Option {
	return func(c *Cache) { c.enabled = enabled }
}

// New creates a Cache on top of backend.
func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		codec:   JSONCodec{},
		now:     time.Now,
		enabled: true,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached response for key if it has not expired. Expired
// and unreadable entries are evicted and reported as misses.
func (c *Cache) Get(ctx context.Context, key string) (ops.Response, bool) {
	if !c.enabled {
		return ops.Response{}, false
	}
	raw, ok := c.backend.Get(ctx, key)
	if !ok {
		return ops.Response{}, false
	}
	e, err := c.codec.Decode(raw)
	if err != nil {
		c.logger.Debug("cache: dropping unreadable entry", zap.String("key", key), zap.Error(err))
		c.backend.Delete(ctx, key)
		return ops.Response{}, false
	}
	if !e.Valid(c.now()) {
		c.backend.Delete(ctx, key)
		return ops.Response{}, false
	}
	return e.Value, true
}

// Set stores val under key for ttl, overwriting any existing entry. TTLs are
// truncated to whole milliseconds; a TTL that truncates to zero (or is
// negative) means "never cached" and removes any existing entry. Failed
// responses are never stored.
func (c *Cache) Set(ctx context.Context, key string, val ops.Response, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if !val.Success {
		c.logger.Debug("cache: refusing to store failed response", zap.String("key", key))
		return
	}
	ttl = ttl.Truncate(time.Millisecond)
	if ttl <= 0 {
		c.backend.Delete(ctx, key)
		return
	}
	raw, err := c.codec.Encode(Entry{Value: val, StoredAt: c.now(), TTL: ttl})
	if err != nil {
		c.logger.Debug("cache: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.backend.Set(ctx, key, raw, ttl)
}

// Invalidate removes a single key.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.backend.Delete(ctx, key)
}

// InvalidateMatching removes every key m matches and returns how many keys
// were removed.
func (c *Cache) InvalidateMatching(ctx context.Context, m policy.Matcher) int {
	n := 0
	for _, key := range c.backend.Keys(ctx) {
		if m.Match(key) {
			c.backend.Delete(ctx, key)
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) {
	c.backend.Clear(ctx)
}

// Len reports the number of entries held by the backend, including entries
// that have expired but not yet been evicted.
func (c *Cache) Len(ctx context.Context) int {
	return c.backend.Len(ctx)
}

// Enabled reports whether the cache stores and serves entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Close closes the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}
