// Package gorawrsheets is the client-side coordination layer in front of a
// spreadsheet-backed record store. A [Client] owns one session's cache,
// in-flight table and invalidation router; a [Server] exposes that
// session's diagnostics over gRPC.
package gorawrsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/breaker"
	"github.com/Keksclan/goRawrSheets/cache"
	"github.com/Keksclan/goRawrSheets/config"
	"github.com/Keksclan/goRawrSheets/contextx"
	"github.com/Keksclan/goRawrSheets/gateway"
	"github.com/Keksclan/goRawrSheets/inflight"
	"github.com/Keksclan/goRawrSheets/invalidation"
	"github.com/Keksclan/goRawrSheets/lifecycle"
	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/orchestrator"
	"github.com/Keksclan/goRawrSheets/policy"
	"github.com/Keksclan/goRawrSheets/ratelimit"
	"github.com/Keksclan/goRawrSheets/retry"
	"github.com/Keksclan/goRawrSheets/tracing"
)

// clientConfig holds the configuration assembled via functional options.
type clientConfig struct {
	logger     *zap.Logger
	httpClient *http.Client
	timeout    time.Duration

	backend      cache.BackendConfig
	cacheEnabled bool
	dedupEnabled bool
	defaultTTL   time.Duration
	resolver     *policy.Resolver
	rules        invalidation.Rules

	retry     *retry.Config
	breaker   *breaker.Config
	remoteRPS float64
	burst     int

	tracing    *tracing.TracingConfig
	registerer prometheus.Registerer
	actor      *contextx.Actor
	sessionID  string
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithLogger sets the logger shared by every component of the session.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *clientConfig) { c.logger = l }
}

// WithHTTPClient sets the HTTP client used to reach the remote store.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) { c.timeout = d }
}

// WithCacheBackend selects the cache backend.
func WithCacheBackend(cfg cache.BackendConfig) ClientOption {
	return func(c *clientConfig) { c.backend = cfg }
}

// WithCache enables or disables read caching.
func WithCache(enabled bool) ClientOption {
	return func(c *clientConfig) { c.cacheEnabled = enabled }
}

// WithDedup enables or disables in-flight deduplication of reads.
func WithDedup(enabled bool) ClientOption {
	return func(c *clientConfig) { c.dedupEnabled = enabled }
}

// WithDefaultTTL sets the TTL for reads no policy covers.
func WithDefaultTTL(d time.Duration) ClientOption {
	return func(c *clientConfig) { c.defaultTTL = d }
}

// WithTTLPolicies sets per-operation read TTLs.
func WithTTLPolicies(r *policy.Resolver) ClientOption {
	return func(c *clientConfig) { c.resolver = r }
}

// WithInvalidationRules replaces the built-in invalidation table.
func WithInvalidationRules(r invalidation.Rules) ClientOption {
	return func(c *clientConfig) { c.rules = r }
}

// WithRetry retries failed reads according to cfg. Writes are never
// retried.
func WithRetry(cfg retry.Config) ClientOption {
	return func(c *clientConfig) { c.retry = &cfg }
}

// WithBreaker guards remote calls with a circuit breaker.
func WithBreaker(cfg breaker.Config) ClientOption {
	return func(c *clientConfig) { c.breaker = &cfg }
}

// WithRemoteRateLimit paces outbound calls to rps per second with the
// given burst.
func WithRemoteRateLimit(rps float64, burst int) ClientOption {
	return func(c *clientConfig) { c.remoteRPS, c.burst = rps, burst }
}

// WithRemoteTracing traces reads, writes and outbound HTTP requests.
func WithRemoteTracing(cfg *tracing.TracingConfig) ClientOption {
	return func(c *clientConfig) { c.tracing = cfg }
}

// WithRegisterer registers the session's Prometheus collectors with reg.
func WithRegisterer(reg prometheus.Registerer) ClientOption {
	return func(c *clientConfig) { c.registerer = reg }
}

// WithActor attaches actor to every call that does not carry one already.
func WithActor(a contextx.Actor) ClientOption {
	return func(c *clientConfig) { c.actor = &a }
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) ClientOption {
	return func(c *clientConfig) { c.sessionID = id }
}

// Client is one client session: a cache, an in-flight table, an
// invalidation router and a gateway wired behind an orchestrator. It is
// safe for concurrent use.
type Client struct {
	orch      *orchestrator.Orchestrator
	cache     *cache.Cache
	workflow  *lifecycle.Workflow
	retry     *retry.Config
	actor     *contextx.Actor
	sessionID string
	logger    *zap.Logger
}

// NewClient creates a session talking to the remote store at endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{
		logger:       zap.NewNop(),
		backend:      cache.DefaultBackendConfig(),
		cacheEnabled: true,
		dedupEnabled: true,
		defaultTTL:   orchestrator.DefaultTTL,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.sessionID == "" {
		cfg.sessionID = uuid.NewString()
	}
	logger := cfg.logger.With(zap.String("session_id", cfg.sessionID))

	backend, err := cache.NewBackend(cfg.backend, cfg.sessionID)
	if err != nil {
		return nil, err
	}
	c := cache.New(backend, cache.WithLogger(logger), cache.WithEnabled(cfg.cacheEnabled))

	gw, err := gateway.New(endpoint, gatewayOptions(cfg, logger)...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	routerOpts := []invalidation.Option{invalidation.WithLogger(logger)}
	if cfg.rules != nil {
		routerOpts = append(routerOpts, invalidation.WithRules(cfg.rules))
	}
	router, err := invalidation.New(c, routerOpts...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	orch, err := orchestrator.New(c,
		inflight.New(inflight.WithEnabled(cfg.dedupEnabled), inflight.WithLogger(logger)),
		gw, router,
		orchestrator.WithGuard(lifecycle.NewGuard(logger)),
		orchestrator.WithResolver(cfg.resolver),
		orchestrator.WithDefaultTTL(cfg.defaultTTL),
		orchestrator.WithLogger(logger),
		orchestrator.WithTracing(cfg.tracing),
		orchestrator.WithRegisterer(cfg.registerer),
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	cl := &Client{
		orch:      orch,
		cache:     c,
		retry:     cfg.retry,
		actor:     cfg.actor,
		sessionID: cfg.sessionID,
		logger:    logger,
	}
	cl.workflow = lifecycle.NewWorkflow(cl)
	logger.Info("session started",
		zap.String("endpoint", endpoint),
		zap.String("cache_backend", cfg.backend.Kind),
		zap.Bool("cache", cfg.cacheEnabled),
		zap.Bool("dedup", cfg.dedupEnabled),
	)
	return cl, nil
}

// gatewayOptions builds the gateway middleware: logging outermost, then
// the breaker so an open circuit fails before waiting on the limiter.
func gatewayOptions(cfg clientConfig, logger *zap.Logger) []gateway.Option {
	mw := []gateway.Middleware{gateway.Logging(logger)}
	if cfg.breaker != nil {
		bc := *cfg.breaker
		next := bc.OnStateChange
		bc.OnStateChange = func(from, to breaker.State) {
			logger.Warn("remote circuit state changed",
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			if next != nil {
				next(from, to)
			}
		}
		mw = append(mw, gateway.CircuitBreaker(breaker.New(bc)))
	}
	if cfg.remoteRPS > 0 {
		mw = append(mw, gateway.RateLimit(ratelimit.NewLimiter(cfg.remoteRPS, cfg.burst)))
	}

	opts := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithTracing(cfg.tracing),
		gateway.WithMiddleware(mw...),
	}
	if cfg.httpClient != nil {
		opts = append(opts, gateway.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		opts = append(opts, gateway.WithTimeout(cfg.timeout))
	}
	return opts
}

// NewClientFromConfig creates a session from a loaded configuration.
func NewClientFromConfig(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("gorawrsheets: nil config")
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, fmt.Errorf("gorawrsheets: ttl policies: %w", err)
	}
	base := []ClientOption{
		WithTimeout(cfg.Remote.Timeout),
		WithCacheBackend(cfg.BackendConfig()),
		WithCache(cfg.Cache.Enabled),
		WithDedup(cfg.Dedup.Enabled),
		WithDefaultTTL(cfg.Cache.DefaultTTL),
		WithTTLPolicies(resolver),
	}
	if cfg.Remote.RateLimit.RPS > 0 {
		base = append(base, WithRemoteRateLimit(cfg.Remote.RateLimit.RPS, cfg.Remote.RateLimit.Burst))
	}
	if cfg.Remote.Breaker.Enabled {
		base = append(base, WithBreaker(cfg.BreakerPolicy()))
	}
	if cfg.Retry.Enabled {
		base = append(base, WithRetry(cfg.RetryPolicy()))
	}
	return NewClient(cfg.Remote.Endpoint, append(base, opts...)...)
}

// SessionID identifies this session.
func (c *Client) SessionID() string { return c.sessionID }

// Orchestrator returns the session's orchestrator.
func (c *Client) Orchestrator() *orchestrator.Orchestrator { return c.orch }

// Workflow returns the typed candidate lifecycle API writing through this
// session.
func (c *Client) Workflow() *lifecycle.Workflow { return c.workflow }

func (c *Client) scope(ctx context.Context) context.Context {
	if contextx.SessionIDFromContext(ctx) == "" {
		ctx = contextx.WithSessionID(ctx, c.sessionID)
	}
	if c.actor != nil {
		if _, ok := contextx.ActorFromContext(ctx); !ok {
			ctx = contextx.WithActor(ctx, *c.actor)
		}
	}
	return ctx
}

// Read performs a read operation through the cache and the in-flight
// coordinator. With retries configured, failed reads are retried.
func (c *Client) Read(ctx context.Context, op ops.Operation, params ops.Params, opts ...orchestrator.ReadOption) ops.Response {
	ctx = c.scope(ctx)
	if c.retry == nil {
		return c.orch.Read(ctx, op, params, opts...)
	}
	return retry.Do(ctx, *c.retry, func(ctx context.Context) ops.Response {
		return c.orch.Read(ctx, op, params, opts...)
	})
}

// Write performs a write operation and invalidates the reads it affects.
func (c *Client) Write(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
	return c.orch.Write(c.scope(ctx), op, params)
}

// Candidates lists every candidate.
func (c *Client) Candidates(ctx context.Context) ([]lifecycle.Candidate, error) {
	return lifecycle.DecodeCandidates(c.Read(ctx, ops.ListCandidates, nil))
}

// CandidatesByStatus lists the candidates whose triage status is status.
func (c *Client) CandidatesByStatus(ctx context.Context, status lifecycle.TriageStatus) ([]lifecycle.Candidate, error) {
	return lifecycle.DecodeCandidates(c.Read(ctx, ops.GetCandidatesByStatus, ops.Params{lifecycle.ParamStatus: string(status)}))
}

// Candidate fetches one candidate by ID.
func (c *Client) Candidate(ctx context.Context, id string) (lifecycle.Candidate, error) {
	return lifecycle.DecodeCandidate(c.Read(ctx, ops.GetCandidate, ops.Params{lifecycle.ParamID: id}))
}

// CacheStats reports the cache size and whether caching is enabled.
func (c *Client) CacheStats(ctx context.Context) orchestrator.CacheStats {
	return c.orch.CacheStats(ctx)
}

// DedupStats reports pending shared calls.
func (c *Client) DedupStats() orchestrator.DedupStats { return c.orch.DedupStats() }

// PerformanceStats reports request totals, hit rate and latency.
func (c *Client) PerformanceStats() orchestrator.PerformanceStats {
	return c.orch.PerformanceStats()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) { c.orch.ClearCache(ctx) }

// Close releases the cache backend.
func (c *Client) Close() error {
	c.logger.Info("session closed")
	return c.cache.Close()
}
