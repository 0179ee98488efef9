// Package inflight collapses concurrent identical reads into a single
// underlying call. Callers that arrive while a call for the same key is
// outstanding wait for it and receive its outcome instead of issuing their
// own.
package inflight

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Func performs the underlying call for a key.
type Func func(ctx context.Context) (ops.Response, error)

// Coordinator tracks at most one pending call per key. The zero value is
// not usable; construct with New.
type Coordinator struct {
	group   singleflight.Group
	pending atomic.Int64
	enabled bool
	logger  *zap.Logger

	mu   sync.Mutex
	keys map[string]int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEnabled turns collapsing on or off. A disabled coordinator runs every
// call independently.
func WithEnabled(enabled bool) Option {
	return func(c *Coordinator) { c.enabled = enabled }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{enabled: true, logger: zap.NewNop(), keys: map[string]int{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run returns the outcome of fn for key, calling fn only if no call for key
// is already outstanding. shared reports whether the outcome was delivered
// to more than one caller.
//
// fn runs on a context detached from ctx's cancellation, so one caller
// giving up does not abort the call for the others. If ctx is done before
// the call settles, Run returns ctx.Err() and the call keeps running for
// the remaining waiters.
//
// The key is released as soon as fn returns, whether it succeeded, failed
// or panicked. A panic in fn is reported to every waiter as an error.
func (c *Coordinator) Run(ctx context.Context, key string, fn Func) (resp ops.Response, shared bool, err error) {
	if !c.enabled {
		resp, err = safeCall(ctx, fn)
		return resp, false, err
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.pending.Add(1)
		c.track(key, 1)
		defer func() {
			c.track(key, -1)
			c.pending.Add(-1)
		}()
		return safeCall(detached, fn)
	})

	select {
	case <-ctx.Done():
		return ops.Response{}, false, ctx.Err()
	case res := <-ch:
		resp, _ = res.Val.(ops.Response)
		if res.Shared {
			c.logger.Debug("inflight: shared result", zap.String("key", key))
			resp.Data = append(resp.Data[:0:0], resp.Data...)
		}
		return resp, res.Shared, res.Err
	}
}

// Pending reports how many keys currently have an outstanding call.
func (c *Coordinator) Pending() int {
	return int(c.pending.Load())
}

// Enabled reports whether concurrent calls are collapsed.
func (c *Coordinator) Enabled() bool {
	return c.enabled
}

// Forget releases key so the next Run starts a new call even if the current
// one has not settled.
func (c *Coordinator) Forget(key string) {
	c.group.Forget(key)
}

// ForgetMatching releases every outstanding key m matches and returns how
// many were released. Calls already running still finish for the callers
// waiting on them.
func (c *Coordinator) ForgetMatching(m interface{ Match(key string) bool }) int {
	c.mu.Lock()
	var matched []string
	for k := range c.keys {
		if m.Match(k) {
			matched = append(matched, k)
		}
	}
	c.mu.Unlock()

	for _, k := range matched {
		c.group.Forget(k)
	}
	if len(matched) > 0 {
		c.logger.Debug("inflight: forgot pending keys", zap.Strings("keys", matched))
	}
	return len(matched)
}

// track adjusts the count of running calls for key. A key forgotten while
// its call runs may get a second call, hence the count.
func (c *Coordinator) track(key string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := c.keys[key] + delta; n > 0 {
		c.keys[key] = n
	} else {
		delete(c.keys, key)
	}
}

func safeCall(ctx context.Context, fn Func) (resp ops.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = ops.Response{}
			err = fmt.Errorf("inflight: call panicked: %v", r)
		}
	}()
	return fn(ctx)
}
