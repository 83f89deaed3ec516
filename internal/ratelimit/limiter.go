package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when no permit frees up within the wait timeout.
// It is the local budget running out, not a 429 from the remote API.
var ErrTimeout = errors.New("rate limiter: timed out waiting for permit")

// Limiter grants at most limit permits per fixed period window.
// A single Limiter is shared by every caller that talks to the same API key.
type Limiter struct {
	limit       int
	period      time.Duration
	waitTimeout time.Duration

	mu          sync.Mutex
	windowStart time.Time
	used        int

	now func() time.Time
}

// New creates a limiter. limit and period must be positive; a zero waitTimeout fails
// immediately whenever the current window is exhausted.
func New(limit int, period, waitTimeout time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if period <= 0 {
		period = time.Second
	}
	return &Limiter{
		limit:       limit,
		period:      period,
		waitTimeout: waitTimeout,
		now:         time.Now,
	}
}

// Acquire blocks until a permit is granted, the wait timeout would be exceeded, or
// ctx is done. The lock is never held while sleeping.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := l.now().Add(l.waitTimeout)

	for {
		wait, ok := l.tryAcquire()
		if ok {
			return nil
		}

		if l.now().Add(wait).After(deadline) {
			return ErrTimeout
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire takes a permit from the current window, or reports how long until the next one opens.
func (l *Limiter) tryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() || !now.Before(l.windowStart.Add(l.period)) {
		l.windowStart = now
		l.used = 0
	}

	if l.used < l.limit {
		l.used++
		return 0, true
	}

	return l.windowStart.Add(l.period).Sub(now), false
}
