// Package ratelimit provides a token-bucket limiter backed by
// golang.org/x/time/rate. The gateway waits on it before every outbound
// call to the remote store; the diagnostics server uses it as a
// non-blocking gate that rejects excess requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket limiter.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter creates a Limiter that permits rps requests per second with the
// given burst size. A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *Limiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{lim: rate.NewLimiter(limit, burst)}
}

// Allow reports whether a single request may proceed now.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// Wait blocks until a request may proceed or ctx is done. It fails
// immediately if the wait would outlast ctx's deadline.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
