package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// L2 is a Redis-backed backend. Every key is namespaced with a per-session
// prefix so two client sessions never see each other's entries. All
// operations fail soft: if Redis is unavailable, reads miss and writes are
// dropped.
type L2 struct {
	rdb    *redis.Client
	prefix string
}

// RedisConfig holds the connection settings for L2.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Namespace is prepended to every key, followed by the session ID.
	Namespace string
}

// NewL2 creates a Redis-backed backend scoped to sessionID.
func NewL2(cfg RedisConfig, sessionID string) *L2 {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ns := cfg.Namespace
	if ns == "" {
		ns = "rawrsheets"
	}
	return &L2{rdb: rdb, prefix: ns + ":" + sessionID + ":"}
}

func (l *L2) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := l.rdb.Get(ctx, l.prefix+key).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; connection errors are treated the same.
		return nil, false
	}
	return val, true
}

func (l *L2) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	_ = l.rdb.Set(ctx, l.prefix+key, val, ttl).Err()
}

func (l *L2) Delete(ctx context.Context, key string) {
	_ = l.rdb.Del(ctx, l.prefix+key).Err()
}

// Keys scans the session namespace and returns keys with the prefix
// stripped.
func (l *L2) Keys(ctx context.Context) []string {
	var out []string
	iter := l.rdb.Scan(ctx, 0, l.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), l.prefix))
	}
	// A failed scan yields a partial list; callers remove what they can.
	return out
}

// Clear deletes every key in the session namespace. The rest of the
// database is left alone.
func (l *L2) Clear(ctx context.Context) {
	keys := l.Keys(ctx)
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = l.prefix + k
	}
	_ = l.rdb.Del(ctx, full...).Err()
}

func (l *L2) Len(ctx context.Context) int {
	return len(l.Keys(ctx))
}

// Ping checks the Redis connection.
func (l *L2) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (l *L2) Close() error {
	return l.rdb.Close()
}
