package retry

import (
	"context"
	"slices"
	"time"

	"github.com/Keksclan/goRawrSheets/ops"
)

// Config controls the retry behaviour of [Do].
type Config struct {
	// MaxAttempts is the maximum number of times fn is called (including the
	// first attempt). Values ≤ 1 mean no retries.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Subsequent retries use
	// exponential back-off: BaseDelay * 2^attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed back-off delay.
	MaxDelay time.Duration

	// Jitter adds randomness to the delay. A value of 0.2 means ±20 % of
	// the computed delay. Zero disables jitter.
	Jitter float64

	// RetryKinds lists the failure kinds worth another attempt. An empty
	// list means no failure is retried.
	RetryKinds []ops.ErrorKind
}

// DefaultConfig retries transport failures up to three attempts in total,
// starting at 500ms.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      0.2,
		RetryKinds:  []ops.ErrorKind{ops.KindTransport},
	}
}

// Do calls fn up to cfg.MaxAttempts times, retrying only failed responses
// whose kind is listed in cfg.RetryKinds. Between attempts an exponential
// back-off delay (with optional jitter) is applied.
//
// If ctx is done while waiting, Do returns the last failed response rather
// than waiting further.
func Do(ctx context.Context, cfg Config, fn func(context.Context) ops.Response) ops.Response {
	attempts := max(cfg.MaxAttempts, 1)

	var resp ops.Response
	for i := range attempts {
		resp = fn(ctx)
		if resp.Success || i == attempts-1 {
			return resp
		}
		if !slices.Contains(cfg.RetryKinds, resp.Kind) {
			return resp
		}

		timer := time.NewTimer(backoff(cfg, i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return resp
		case <-timer.C:
		}
	}
	return resp
}
