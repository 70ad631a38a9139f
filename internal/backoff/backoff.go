// Package backoff computes exponential backoff delays for bounded retry loops.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy holds backoff configuration. Delay grows as BaseDelay*2^attempt,
// capped at MaxDelay, with up to MaxJitter of random jitter added on top.
type Policy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	MaxJitter time.Duration
}

// DefaultPolicy returns sensible defaults for tracker API retries.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  15 * time.Second,
		MaxJitter: 250 * time.Millisecond,
	}
}

// Delay returns the wait before retry number attempt (0-based). The result
// is never below floor, so a server-provided Retry-After always wins over
// a shorter computed backoff.
func (p Policy) Delay(attempt int, floor time.Duration) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(2, float64(attempt)))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d < floor {
		d = floor
	}
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return d
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
