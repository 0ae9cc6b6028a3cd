package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter enforces a minimum pause between consecutive operations, with an
// optional jitter factor. It is safe for concurrent use, though callers in
// this codebase issue requests strictly one at a time.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
	last     time.Time
}

// NewEvery creates a limiter that allows one operation per interval.
// An interval <= 0 produces a limiter that never blocks.
func NewEvery(interval time.Duration, jitter float64) *Limiter {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return &Limiter{interval: interval, jitter: jitter}
}

// NewLimiter creates a limiter from a requests-per-second rate.
// If rps is <= 0, the limiter does not block.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if rps <= 0 {
		return NewEvery(0, jitter)
	}
	return NewEvery(time.Duration(float64(time.Second)/rps), jitter)
}

// Wait blocks until the configured interval has elapsed since the previous
// operation, or until the context is cancelled. The first call never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	var wait time.Duration
	if !l.last.IsZero() {
		wait = l.interval - time.Since(l.last)
	}
	if wait > 0 && l.jitter > 0 {
		// Spread requests by up to +/- jitter*interval to avoid a
		// machine-regular cadence.
		f := (rand.Float64() * 2) - 1.0
		wait += time.Duration(float64(l.interval) * l.jitter * f)
	}
	if wait < 0 {
		wait = 0
	}
	l.last = time.Now().Add(wait)
	l.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Interval returns the configured minimum pause.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Pause sleeps for d or until the context is cancelled. Used for the explicit
// inter-query and inter-page delays that are not tied to a limiter instance.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
