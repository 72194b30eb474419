package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket that refills one token per interval up to a burst.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	burst    int
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter allows perMinute calls per minute with a burst of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return newRateLimiter(perMinute, time.Minute/time.Duration(perMinute))
}

func newRateLimiter(burst int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   burst,
		burst:    burst,
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait := r.take()
		if wait == 0 {
			return nil
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

// take consumes a token and returns 0, or returns how long until the next refill.
func (r *RateLimiter) take() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if n := int(now.Sub(r.last) / r.interval); n > 0 {
		r.tokens = min(r.burst, r.tokens+n)
		r.last = r.last.Add(time.Duration(n) * r.interval)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0
	}
	return r.interval - now.Sub(r.last)
}
