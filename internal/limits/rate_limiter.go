package limits

import (
	"context"
	"time"

	"internscout/internal/metrics"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrExceedsCapacity = errors.New("requested tokens exceed bucket capacity")

// RateLimiter is a token bucket bounding remote requests per minute. Refill
// is lazy: available tokens are recomputed from elapsed time on every check,
// there is no ticking goroutine. Waiting callers poll in bounded steps so a
// long wait stays responsive to cancellation.
type RateLimiter struct {
	limiter   *rate.Limiter
	clock     Clock
	perMinute int
	capacity  int
}

// NewRateLimiter builds a bucket that starts full. Burst capacity is capped
// at 10 so a fresh process cannot fire a whole minute's budget at once.
func NewRateLimiter(requestsPerMinute int, clock Clock) (*RateLimiter, error) {

	if requestsPerMinute <= 0 {
		return nil, errors.New("requests per minute must be greater than zero")
	}

	capacity := min(requestsPerMinute, 10)
	limiter := &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), capacity),
		clock:     clock,
		perMinute: requestsPerMinute,
		capacity:  capacity,
	}

	log.Infof("rate limiter initialized: %d req/min, burst: %d", requestsPerMinute, capacity)
	return limiter, nil
}

// Acquire blocks until n tokens are debited atomically. It fails only on
// context cancellation or when n can never fit the bucket; rate pressure
// alone never produces an error, only delay.
func (l *RateLimiter) Acquire(ctx context.Context, n int) error {

	if n > l.capacity {
		return errors.Wrapf(ErrExceedsCapacity, "requested %d, capacity %d", n, l.capacity)
	}

	start := l.clock.Now()
	for {
		now := l.clock.Now()
		if l.limiter.AllowN(now, n) {
			waited := now.Sub(start)
			metrics.RateLimitWait.Observe(waited.Seconds())
			log.Debugf("acquired %d tokens, remaining: %.2f", n, l.limiter.TokensAt(now))
			return nil
		}

		deficit := float64(n) - l.limiter.TokensAt(now)
		wait := time.Duration(deficit / float64(l.limiter.Limit()) * float64(time.Second))
		if wait > time.Second {
			wait = time.Second
		}
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}

		log.Debugf("rate limited, waiting %v for %d tokens", wait, n)
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

type RateStatus struct {
	Tokens          float64
	Capacity        int
	RefillPerSecond float64
	PerMinute       int
}

// Status refills first, then reports, so Tokens reflects the current instant.
func (l *RateLimiter) Status() RateStatus {
	return RateStatus{
		Tokens:          l.limiter.TokensAt(l.clock.Now()),
		Capacity:        l.capacity,
		RefillPerSecond: float64(l.limiter.Limit()),
		PerMinute:       l.perMinute,
	}
}
