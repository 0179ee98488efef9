package config

import (
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap/zapcore"

	"github.com/Keksclan/goRawrSheets/cache"
	"github.com/Keksclan/goRawrSheets/policy"
)

// ValidationError reports one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the whole tree and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Remote.Endpoint == "" {
		add("remote.endpoint", "is required")
	} else if u, err := url.Parse(c.Remote.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("remote.endpoint", "must be an absolute http(s) URL, got %q", c.Remote.Endpoint)
	}
	if c.Remote.Timeout <= 0 {
		add("remote.timeout", "must be positive, got %s", c.Remote.Timeout)
	}
	validateRate(add, "remote.rate_limit", c.Remote.RateLimit)
	if c.Remote.Breaker.Enabled {
		if c.Remote.Breaker.FailureThreshold < 1 {
			add("remote.breaker.failure_threshold", "must be at least 1, got %d", c.Remote.Breaker.FailureThreshold)
		}
		if c.Remote.Breaker.OpenTimeout <= 0 {
			add("remote.breaker.open_timeout", "must be positive, got %s", c.Remote.Breaker.OpenTimeout)
		}
	}

	switch c.Cache.Backend {
	case cache.BackendLFU, cache.BackendLRU:
	case cache.BackendRedis, cache.BackendTiered:
		if c.Cache.Redis.Addr == "" {
			add("cache.redis.addr", "is required for the %s backend", c.Cache.Backend)
		}
	default:
		add("cache.backend", "unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.MaxEntries < 1 {
		add("cache.max_entries", "must be at least 1, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.DefaultTTL < 0 {
		add("cache.default_ttl", "must not be negative, got %s", c.Cache.DefaultTTL)
	}
	for i, r := range c.Cache.TTLs {
		field := fmt.Sprintf("cache.ttls[%d]", i)
		if r.Match == "" {
			add(field+".match", "is required")
		} else if _, err := policy.ParsePattern(r.Match); err != nil {
			add(field+".match", "%v", err)
		}
		if r.TTL < 0 {
			add(field+".ttl", "must not be negative, got %s", r.TTL)
		}
	}

	if c.Retry.Enabled && c.Retry.MaxAttempts < 1 {
		add("retry.max_attempts", "must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		add("retry.jitter", "must be within [0, 1], got %v", c.Retry.Jitter)
	}

	validateRate(add, "diagnostics.rate_limit", c.Diagnostics.RateLimit)

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "unknown level %q", c.Logging.Level)
	}
	return errors.Join(errs...)
}

func validateRate(add func(string, string, ...any), field string, r RateLimitConfig) {
	if r.RPS < 0 {
		add(field+".rps", "must not be negative, got %v", r.RPS)
	}
	if r.Burst < 0 {
		add(field+".burst", "must not be negative, got %d", r.Burst)
	}
}
