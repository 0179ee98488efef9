package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g.
// RAWRSHEETS_REMOTE_ENDPOINT for remote.endpoint.
const EnvPrefix = "RAWRSHEETS"

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply; a named file that does not
// exist is an error. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional is Load for a path that may legitimately be absent.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

// setDefaults registers every scalar key so environment variables can
// override it.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("remote.endpoint", d.Remote.Endpoint)
	v.SetDefault("remote.timeout", d.Remote.Timeout)
	v.SetDefault("remote.rate_limit.rps", d.Remote.RateLimit.RPS)
	v.SetDefault("remote.rate_limit.burst", d.Remote.RateLimit.Burst)
	v.SetDefault("remote.breaker.enabled", d.Remote.Breaker.Enabled)
	v.SetDefault("remote.breaker.failure_threshold", d.Remote.Breaker.FailureThreshold)
	v.SetDefault("remote.breaker.open_timeout", d.Remote.Breaker.OpenTimeout)
	v.SetDefault("remote.breaker.half_open_max_success", d.Remote.Breaker.HalfOpenMaxSuccess)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.default_ttl", d.Cache.DefaultTTL)
	v.SetDefault("cache.ttls", d.Cache.TTLs)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.namespace", d.Cache.Redis.Namespace)

	v.SetDefault("dedup.enabled", d.Dedup.Enabled)

	v.SetDefault("retry.enabled", d.Retry.Enabled)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.base_delay", d.Retry.BaseDelay)
	v.SetDefault("retry.max_delay", d.Retry.MaxDelay)
	v.SetDefault("retry.jitter", d.Retry.Jitter)

	v.SetDefault("diagnostics.addr", d.Diagnostics.Addr)
	v.SetDefault("diagnostics.metrics_addr", d.Diagnostics.MetricsAddr)
	v.SetDefault("diagnostics.token", d.Diagnostics.Token)
	v.SetDefault("diagnostics.rate_limit.rps", d.Diagnostics.RateLimit.RPS)
	v.SetDefault("diagnostics.rate_limit.burst", d.Diagnostics.RateLimit.Burst)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
}

// NewLogger builds the zap logger described by the logging section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("config: invalid log level %q: %w", c.Logging.Level, err)
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
