package cache

import (
	"fmt"
)

// Backend kinds accepted by NewBackend.
const (
	BackendLFU    = "lfu"
	BackendLRU    = "lru"
	BackendRedis  = "redis"
	BackendTiered = "tiered"
)

// BackendConfig selects and sizes a Backend.
type BackendConfig struct {
	// Kind is one of BackendLFU (default), BackendLRU, BackendRedis or
	// BackendTiered (LFU in front of Redis).
	Kind string

	// MaxEntries bounds the in-process backends.
	MaxEntries int

	// Redis configures the Redis backend for BackendRedis and BackendTiered.
	Redis RedisConfig
}

// DefaultBackendConfig returns an LFU backend holding 10 000 entries.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{Kind: BackendLFU, MaxEntries: 10_000}
}

// NewBackend builds the Backend described by cfg. sessionID scopes the
// Redis namespace and is ignored by the in-process kinds.
func NewBackend(cfg BackendConfig, sessionID string) (Backend, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultBackendConfig().MaxEntries
	}
	switch cfg.Kind {
	case "", BackendLFU:
		return NewL1(int64(cfg.MaxEntries))
	case BackendLRU:
		return NewLRU(cfg.MaxEntries)
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("cache: redis backend requires an address")
		}
		return NewL2(cfg.Redis, sessionID), nil
	case BackendTiered:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("cache: tiered backend requires a redis address")
		}
		front, err := NewL1(int64(cfg.MaxEntries))
		if err != nil {
			return nil, err
		}
		return NewTiered(front, NewL2(cfg.Redis, sessionID)), nil
	}
	return nil, fmt.Errorf("cache: unknown backend %q", cfg.Kind)
}
