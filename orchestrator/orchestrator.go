// Package orchestrator is the single entry point for remote reads and
// writes. Reads go through the TTL cache and the in-flight coordinator
// before reaching the gateway; writes go straight to the gateway and, on
// success, drive cache invalidation.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Keksclan/goRawrSheets/cache"
	"github.com/Keksclan/goRawrSheets/inflight"
	"github.com/Keksclan/goRawrSheets/invalidation"
	"github.com/Keksclan/goRawrSheets/ops"
	"github.com/Keksclan/goRawrSheets/policy"
	"github.com/Keksclan/goRawrSheets/tracing"
)

// DefaultTTL applies to reads with no explicit TTL and no matching policy.
const DefaultTTL = 30 * time.Second

// Caller performs one remote call. *gateway.Gateway satisfies it.
type Caller interface {
	Call(ctx context.Context, op ops.Operation, params ops.Params) ops.Response
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, op ops.Operation, params ops.Params) ops.Response

// Call implements Caller.
func (f CallerFunc) Call(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
	return f(ctx, op, params)
}

// WriteGuard validates a write before it is sent. It may return augmented
// params; a non-nil error aborts the write without a remote call.
type WriteGuard interface {
	Check(op ops.Operation, params ops.Params) (ops.Params, error)
}

// Orchestrator coordinates the cache, the in-flight coordinator, the
// gateway and the invalidation router for one client session. It is safe
// for concurrent use.
type Orchestrator struct {
	cache    *cache.Cache
	flight   *inflight.Coordinator
	remote   Caller
	router   *invalidation.Router
	guard    WriteGuard
	resolver *policy.Resolver

	defaultTTL time.Duration
	logger     *zap.Logger
	tracing    *tracing.TracingConfig
	registerer prometheus.Registerer
	now        func() time.Time

	rec     recorder
	metrics *collectors
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGuard sets the write guard consulted before every write.
func WithGuard(g WriteGuard) Option {
	return func(o *Orchestrator) { o.guard = g }
}

// WithResolver sets the per-operation read policies.
func WithResolver(r *policy.Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithDefaultTTL sets the TTL used when neither the call nor the resolver
// names one.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *Orchestrator) { o.defaultTTL = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTracing enables an OpenTelemetry span per read and write.
func WithTracing(cfg *tracing.TracingConfig) Option {
	return func(o *Orchestrator) { o.tracing = cfg }
}

// WithRegisterer registers the Prometheus collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Orchestrator) { o.registerer = reg }
}

// WithClock replaces time.Now for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New wires an Orchestrator from its collaborators.
func New(c *cache.Cache, flight *inflight.Coordinator, remote Caller, router *invalidation.Router, opts ...Option) (*Orchestrator, error) {
	if c == nil || flight == nil || remote == nil || router == nil {
		return nil, errors.New("orchestrator: cache, coordinator, caller and router are required")
	}
	o := &Orchestrator{
		cache:      c,
		flight:     flight,
		remote:     remote,
		router:     router,
		defaultTTL: DefaultTTL,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.metrics = newCollectors(o.registerer)
	return o, nil
}

type readOptions struct {
	ttl       time.Duration
	hasTTL    bool
	skipCache bool
	skipDedup bool
}

// ReadOption adjusts a single read.
type ReadOption func(*readOptions)

// WithTTL overrides the TTL the response is cached for. Zero means the
// response is not cached.
func WithTTL(d time.Duration) ReadOption {
	return func(r *readOptions) { r.ttl, r.hasTTL = d, true }
}

// SkipCache neither consults nor populates the cache.
func SkipCache() ReadOption {
	return func(r *readOptions) { r.skipCache = true }
}

// SkipDedup issues the call even if an identical one is pending.
func SkipDedup() ReadOption {
	return func(r *readOptions) { r.skipDedup = true }
}

// Read returns the response for a read operation, from the cache when a
// valid entry exists, otherwise from a single shared remote call. Only
// successful responses are cached.
func (o *Orchestrator) Read(ctx context.Context, op ops.Operation, params ops.Params, opts ...ReadOption) ops.Response {
	var ro readOptions
	for _, opt := range opts {
		opt(&ro)
	}

	start := o.now()
	ctx, span := tracing.StartOperation(ctx, o.tracing, "read", op)
	resp, hit, shared := o.read(ctx, op, params, ro)
	span.SetAttributes(tracing.AttrCacheHit.Bool(hit), tracing.AttrShared.Bool(shared))
	tracing.EndOperation(span, resp)
	o.record(op, start, hit, resp)
	return resp
}

func (o *Orchestrator) read(ctx context.Context, op ops.Operation, params ops.Params, ro readOptions) (resp ops.Response, hit, shared bool) {
	if err := checkKind(op, ops.Read); err != nil {
		return ops.Fail(err), false, false
	}
	key := ops.Key(op, params)

	if !ro.skipCache {
		if cached, ok := o.cache.Get(ctx, key); ok {
			o.logger.Debug("orchestrator: cache hit", zap.String("key", key))
			return cached, true, false
		}
	}

	ttl := o.ttlFor(op, ro)
	gen := o.router.Generation()
	// The cache is populated inside the call so one network round trip
	// yields one Set no matter how many callers share it.
	call := func(ctx context.Context) (ops.Response, error) {
		r := o.remote.Call(ctx, op, params)
		if r.Success && !ro.skipCache {
			o.store(ctx, key, r, ttl, gen)
		}
		return r, nil
	}

	if ro.skipDedup {
		resp, _ = call(ctx)
		return resp, false, false
	}
	resp, shared, err := o.flight.Run(ctx, key, call)
	if err != nil {
		return ops.Fail(&ops.Error{Kind: ops.KindTransport, Op: op.String(), Msg: err.Error(), Err: err}), false, false
	}
	if !resp.Success {
		o.logger.Warn("orchestrator: read failed",
			zap.Stringer("op", op),
			zap.Stringer("kind", resp.Kind),
			zap.String("error", resp.Error),
		)
	}
	return resp, false, shared
}

// store caches r unless a write was applied since gen was observed. The
// generation is checked again after the Set, since a write landing in
// between may have purged before the entry existed.
func (o *Orchestrator) store(ctx context.Context, key string, r ops.Response, ttl time.Duration, gen uint64) {
	if o.router.Generation() != gen {
		o.logger.Debug("orchestrator: skipped caching raced read", zap.String("key", key))
		return
	}
	o.cache.Set(ctx, key, r, ttl)
	if o.router.Generation() != gen {
		o.cache.Invalidate(ctx, key)
	}
}

// ttlFor resolves the TTL: explicit option, then policy, then default.
func (o *Orchestrator) ttlFor(op ops.Operation, ro readOptions) time.Duration {
	if ro.hasTTL {
		return ro.ttl
	}
	if _, pol, ok := o.resolver.Resolve(op.String()); ok {
		return pol.TTL
	}
	return o.defaultTTL
}

// Write sends a write operation. It is never cached or deduplicated. The
// guard runs first; a rejection returns without a remote call. Cached
// reads the write can make stale are invalidated only if it succeeded.
func (o *Orchestrator) Write(ctx context.Context, op ops.Operation, params ops.Params) ops.Response {
	start := o.now()
	ctx, span := tracing.StartOperation(ctx, o.tracing, "write", op)
	resp := o.write(ctx, op, params, span)
	tracing.EndOperation(span, resp)
	o.record(op, start, false, resp)
	return resp
}

func (o *Orchestrator) write(ctx context.Context, op ops.Operation, params ops.Params, span trace.Span) ops.Response {
	if err := checkKind(op, ops.Write); err != nil {
		return ops.Fail(err)
	}
	if o.guard != nil {
		checked, err := o.guard.Check(op, params)
		if err != nil {
			o.logger.Info("orchestrator: write rejected locally", zap.Stringer("op", op), zap.Error(err))
			return ops.Fail(err)
		}
		params = checked
	}

	resp := o.remote.Call(ctx, op, params)
	if !resp.Success {
		o.logger.Warn("orchestrator: write failed",
			zap.Stringer("op", op),
			zap.Stringer("kind", resp.Kind),
			zap.String("error", resp.Error),
		)
		return resp
	}

	// The write already happened; a caller giving up now must not leave
	// stale entries behind.
	removed := o.router.Apply(context.WithoutCancel(ctx), op)
	for _, m := range o.router.RulesFor(op) {
		o.flight.ForgetMatching(m)
	}
	span.AddEvent("invalidated", trace.WithAttributes(tracing.AttrOperation.String(op.String())))
	o.logger.Debug("orchestrator: write applied", zap.Stringer("op", op), zap.Int("invalidated", removed))
	return resp
}

func checkKind(op ops.Operation, want ops.Kind) error {
	if !op.Valid() {
		return &ops.Error{Kind: ops.KindUsage, Op: op.String(), Msg: "unknown operation"}
	}
	if op.Kind() != want {
		return &ops.Error{Kind: ops.KindUsage, Op: op.String(), Msg: op.Kind().String() + " operation used as a " + want.String()}
	}
	return nil
}

func (o *Orchestrator) record(op ops.Operation, start time.Time, hit bool, resp ops.Response) {
	m := Metric{Operation: op, Duration: o.now().Sub(start), CacheHit: hit, Success: resp.Success}
	o.rec.record(m)
	if op.Valid() {
		o.metrics.observe(m)
	}
}
