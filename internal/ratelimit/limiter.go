package ratelimit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum spacing between calls.
type Limiter struct {
	clock   Clock
	limiter *rate.Limiter
}

// NewLimiter allows one call per interval. A non-positive interval disables
// limiting. A nil clock uses SystemClock.
func NewLimiter(interval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{clock: clock, limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call is permitted.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	now := l.clock.Now()
	reservation := l.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return errors.New("rate limiter cannot satisfy request")
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		reservation.CancelAt(l.clock.Now())
		return err
	}
	return nil
}
