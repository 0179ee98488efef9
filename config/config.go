// Package config loads client and diagnostics settings from an optional
// YAML file, RAWRSHEETS_* environment variables and built-in defaults.
package config

import (
	"time"

	"github.com/Keksclan/goRawrSheets/breaker"
	"github.com/Keksclan/goRawrSheets/cache"
	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/policy"
	"github.com/Keksclan/goRawrSheets/retry"
)

// Config is the full configuration tree.
type Config struct {
	Remote      RemoteConfig      `mapstructure:"remote"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Dedup       DedupConfig       `mapstructure:"dedup"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// RemoteConfig describes the remote store endpoint and the guards around
// calls to it.
type RemoteConfig struct {
	Endpoint  string          `mapstructure:"endpoint"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
}

// RateLimitConfig is a token bucket. A zero rate disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// BreakerConfig configures the circuit breaker on remote calls.
type BreakerConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	FailureThreshold   int           `mapstructure:"failure_threshold"`
	OpenTimeout        time.Duration `mapstructure:"open_timeout"`
	HalfOpenMaxSuccess int           `mapstructure:"half_open_max_success"`
}

// CacheConfig configures the read cache.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Backend    string        `mapstructure:"backend"`
	MaxEntries int           `mapstructure:"max_entries"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	// TTLs are per-operation overrides. A list keeps operation names in
	// their original case.
	TTLs  []TTLRule   `mapstructure:"ttls"`
	Redis RedisConfig `mapstructure:"redis"`
}

// TTLRule assigns a TTL to the reads matched by Match, a pattern in
// policy.ParsePattern form.
type TTLRule struct {
	Match string        `mapstructure:"match"`
	TTL   time.Duration `mapstructure:"ttl"`
}

// RedisConfig locates the Redis server used by the redis and tiered
// backends.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

// DedupConfig toggles in-flight deduplication of reads.
type DedupConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RetryConfig is the caller-level retry policy for reads. Writes are never
// retried.
type RetryConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

// DiagnosticsConfig configures the optional diagnostics server.
type DiagnosticsConfig struct {
	Addr        string          `mapstructure:"addr"`
	MetricsAddr string          `mapstructure:"metrics_addr"`
	Token       string          `mapstructure:"token"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Default returns the built-in configuration. The remote endpoint has no
// default and must be supplied.
func Default() Config {
	r := retry.DefaultConfig()
	b := breaker.DefaultConfig()
	return Config{
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
			Breaker: BreakerConfig{
				Enabled:            true,
				FailureThreshold:   b.FailureThreshold,
				OpenTimeout:        b.OpenTimeout,
				HalfOpenMaxSuccess: b.HalfOpenMaxSuccess,
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    cache.BackendLFU,
			MaxEntries: cache.DefaultBackendConfig().MaxEntries,
			DefaultTTL: 30 * time.Second,
			TTLs: []TTLRule{
				{Match: ops.GetReportStats.String(), TTL: time.Minute},
				{Match: ops.ListAnalysts.String(), TTL: 5 * time.Minute},
				{Match: ops.ListInterviewers.String(), TTL: 5 * time.Minute},
				{Match: ops.GetMessageTemplates.String(), TTL: 5 * time.Minute},
			},
			Redis: RedisConfig{Namespace: "rawrsheets"},
		},
		Dedup: DedupConfig{Enabled: true},
		Retry: RetryConfig{
			Enabled:     false,
			MaxAttempts: r.MaxAttempts,
			BaseDelay:   r.BaseDelay,
			MaxDelay:    r.MaxDelay,
			Jitter:      r.Jitter,
		},
		Diagnostics: DiagnosticsConfig{
			Addr:        ":9090",
			MetricsAddr: ":9091",
			RateLimit:   RateLimitConfig{RPS: 50, Burst: 100},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// BackendConfig converts the cache section for cache.NewBackend.
func (c *Config) BackendConfig() cache.BackendConfig {
	return cache.BackendConfig{
		Kind:       c.Cache.Backend,
		MaxEntries: c.Cache.MaxEntries,
		Redis: cache.RedisConfig{
			Addr:      c.Cache.Redis.Addr,
			Password:  c.Cache.Redis.Password,
			DB:        c.Cache.Redis.DB,
			Namespace: c.Cache.Redis.Namespace,
		},
	}
}

// Resolver builds the per-operation read policies from the TTL rules.
func (c *Config) Resolver() (*policy.Resolver, error) {
	ttls := make(map[string]time.Duration, len(c.Cache.TTLs))
	for _, r := range c.Cache.TTLs {
		ttls[r.Match] = r.TTL
	}
	return policy.FromTTLs(ttls)
}

// RetryPolicy converts the retry section. Only transport failures are
// retried.
func (c *Config) RetryPolicy() retry.Config {
	return retry.Config{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
		MaxDelay:    c.Retry.MaxDelay,
		Jitter:      c.Retry.Jitter,
		RetryKinds:  []ops.ErrorKind{ops.KindTransport},
	}
}

// BreakerPolicy converts the breaker section.
func (c *Config) BreakerPolicy() breaker.Config {
	return breaker.Config{
		FailureThreshold:   c.Remote.Breaker.FailureThreshold,
		OpenTimeout:        c.Remote.Breaker.OpenTimeout,
		HalfOpenMaxSuccess: c.Remote.Breaker.HalfOpenMaxSuccess,
	}
}
