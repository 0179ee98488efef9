// Package breaker provides a thread-safe circuit breaker for the outbound
// calls to the remote record store. While the store keeps timing out there
// is no point queueing more multi-second requests behind it; the breaker
// turns those into immediate failures until a probe succeeds again.
//
// States:
//   - Closed: calls flow normally; consecutive failures are counted.
//   - Open: calls are refused; after OpenTimeout the breaker moves to HalfOpen.
//   - HalfOpen: up to HalfOpenMaxSuccess probe calls are let through. Enough
//     successes close the breaker, any failure reopens it.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the current circuit breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrOpen is returned by Do when the breaker refuses a call.
var ErrOpen = errors.New("breaker: circuit open")

// Config holds the circuit breaker parameters.
type Config struct {
	// FailureThreshold is the number of consecutive failures in Closed state
	// before the breaker trips to Open.
	FailureThreshold int

	// OpenTimeout is how long the breaker stays Open before moving to
	// HalfOpen.
	OpenTimeout time.Duration

	// HalfOpenMaxSuccess is the number of consecutive successes required in
	// HalfOpen state to close the breaker again.
	HalfOpenMaxSuccess int

	// OnStateChange, if set, is called after every transition. It runs with
	// the breaker's lock released.
	OnStateChange func(from, to State)
}

// DefaultConfig trips after 5 consecutive failures, stays open for 30s and
// closes after a single successful probe.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:   5,
		OpenTimeout:        30 * time.Second,
		HalfOpenMaxSuccess: 1,
	}
}

// Breaker is a circuit breaker. All methods are safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	cfg Config

	state     State
	failures  int // consecutive failures in Closed
	successes int // consecutive successes in HalfOpen
	openedAt  time.Time
	nowFunc   func() time.Time
}

// New creates a Breaker. Non-positive thresholds fall back to 1.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.HalfOpenMaxSuccess <= 0 {
		cfg.HalfOpenMaxSuccess = 1
	}
	return &Breaker{
		cfg:     cfg,
		state:   Closed,
		nowFunc: time.Now,
	}
}

// State returns the current state. An Open breaker whose timeout has
// elapsed reports HalfOpen.
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.checkOpenTimeout()
	s := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return s
}

// Allow reports whether a call may go out: always when Closed, while probe
// slots remain when HalfOpen, never when Open.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	from, to := b.checkOpenTimeout()
	var ok bool
	switch b.state {
	case Closed:
		ok = true
	case HalfOpen:
		ok = b.successes < b.cfg.HalfOpenMaxSuccess
	}
	b.mu.Unlock()
	b.notify(from, to)
	return ok
}

// OnSuccess records a successful call.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxSuccess {
			b.state = Closed
			b.failures = 0
			b.successes = 0
		}
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// OnFailure records a failed call.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.toOpen()
		}
	case HalfOpen:
		b.toOpen()
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// Do runs fn if the breaker allows it and records the outcome. fn reports
// whether the call counts as a failure for the breaker, which need not be
// the same as fn having returned an error.
func (b *Breaker) Do(fn func() (failed bool)) error {
	if !b.Allow() {
		return ErrOpen
	}
	if fn() {
		b.OnFailure()
	} else {
		b.OnSuccess()
	}
	return nil
}

// checkOpenTimeout moves Open to HalfOpen once the timeout has elapsed.
// Must be called with b.mu held.
func (b *Breaker) checkOpenTimeout() (from, to State) {
	from = b.state
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.state = HalfOpen
		b.successes = 0
	}
	return from, b.state
}

func (b *Breaker) toOpen() {
	b.state = Open
	b.openedAt = b.now()
	b.successes = 0
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

func (b *Breaker) now() time.Time {
	if b.nowFunc != nil {
		return b.nowFunc()
	}
	return time.Now()
}
