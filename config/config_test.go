package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keksclan/goRawrSheets/cache"
)

const testEndpoint = "https://script.example.org/exec"

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rawrsheets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Remote.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Remote.Breaker.Enabled)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, cache.BackendLFU, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.DefaultTTL)
	assert.NotEmpty(t, cfg.Cache.TTLs)

	assert.True(t, cfg.Dedup.Enabled)
	assert.False(t, cfg.Retry.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)

	// Only the endpoint is missing.
	err := cfg.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "remote.endpoint", ve.Field)

	cfg.Remote.Endpoint = testEndpoint
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Remote.Endpoint = "script.example.org"
	cfg.Remote.Timeout = 0
	cfg.Cache.Backend = "tiered"
	cfg.Cache.TTLs = append(cfg.Cache.TTLs, TTLRule{Match: "regex:[", TTL: time.Second}, TTLRule{TTL: -time.Second})
	cfg.Retry.Jitter = 2
	cfg.Logging.Level = "chatty"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{
		"remote.endpoint",
		"remote.timeout",
		"cache.redis.addr",
		"cache.ttls[4].match",
		"cache.ttls[5].match",
		"cache.ttls[5].ttl",
		"retry.jitter",
		"logging.level",
	} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("RAWRSHEETS_REMOTE_ENDPOINT", testEndpoint)
	t.Setenv("RAWRSHEETS_REMOTE_TIMEOUT", "5s")
	t.Setenv("RAWRSHEETS_CACHE_BACKEND", "lru")
	t.Setenv("RAWRSHEETS_DEDUP_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, testEndpoint, cfg.Remote.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, cache.BackendLRU, cfg.Cache.Backend)
	assert.False(t, cfg.Dedup.Enabled)
	assert.Equal(t, Default().Cache.TTLs, cfg.Cache.TTLs)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
remote:
  endpoint: https://script.example.org/exec
  timeout: 10s
  rate_limit:
    rps: 5
    burst: 10
cache:
  backend: lru
  max_entries: 500
  default_ttl: 15s
  ttls:
    - match: getReportStats
      ttl: 2m
    - match: prefix:getCandidates
      ttl: 20s
retry:
  enabled: true
  max_attempts: 4
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 5.0, cfg.Remote.RateLimit.RPS)
	assert.Equal(t, 10, cfg.Remote.RateLimit.Burst)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 15*time.Second, cfg.Cache.DefaultTTL)
	require.Len(t, cfg.Cache.TTLs, 2)
	assert.Equal(t, TTLRule{Match: "getReportStats", TTL: 2 * time.Minute}, cfg.Cache.TTLs[0])
	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, 4, cfg.RetryPolicy().MaxAttempts)

	// Keys absent from the file keep their defaults.
	assert.True(t, cfg.Dedup.Enabled)
	assert.Equal(t, "rawrsheets", cfg.Cache.Redis.Namespace)

	res, err := cfg.Resolver()
	require.NoError(t, err)
	_, pol, ok := res.Resolve("getReportStats")
	require.True(t, ok)
	assert.Equal(t, 2*time.Minute, pol.TTL)
	_, pol, ok = res.Resolve("getCandidatesByStatus")
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, pol.TTL)
	_, _, ok = res.Resolve("listAnalysts")
	assert.False(t, ok)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := writeFile(t, "remote:\n  endpoint: https://a.example.org/exec\n")
	t.Setenv("RAWRSHEETS_REMOTE_ENDPOINT", "https://b.example.org/exec")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.org/exec", cfg.Remote.Endpoint)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, "remote:\n  endpoint: ftp://example.org\n")
	_, err = Load(path)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "remote.endpoint", ve.Field)
}

func TestLoadOptional_MissingFile(t *testing.T) {
	t.Setenv("RAWRSHEETS_REMOTE_ENDPOINT", testEndpoint)
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, testEndpoint, cfg.Remote.Endpoint)
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = cache.BackendRedis
	cfg.Cache.Redis.Addr = "localhost:6379"

	bc := cfg.BackendConfig()
	assert.Equal(t, cache.BackendRedis, bc.Kind)
	assert.Equal(t, "localhost:6379", bc.Redis.Addr)
	assert.Equal(t, "rawrsheets", bc.Redis.Namespace)

	b := cfg.BreakerPolicy()
	assert.Equal(t, 5, b.FailureThreshold)
	assert.Equal(t, 30*time.Second, b.OpenTimeout)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Logging.Level = "loud"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
