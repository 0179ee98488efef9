// Package retry provides the caller-level retry policy for remote calls:
// exponential backoff with jitter, retrying only failure kinds the caller
// opts into. The orchestrator itself never retries; the Client applies this
// policy to reads when configured to.
package retry

import (
	"math/rand/v2"
	"time"
)

// backoff returns the delay before retry number attempt (0-indexed):
// BaseDelay doubled per attempt, capped at MaxDelay, then spread by up to
// ±Jitter of itself.
func backoff(cfg Config, attempt int) time.Duration {
	delay := cfg.BaseDelay
	for range attempt {
		if cfg.MaxDelay > 0 && delay >= cfg.MaxDelay {
			break
		}
		delay *= 2
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter > 0 {
		spread := float64(delay) * cfg.Jitter * (rand.Float64()*2 - 1)
		delay += time.Duration(spread)
	}
	return max(delay, 0)
}
