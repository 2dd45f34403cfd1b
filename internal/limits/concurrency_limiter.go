package limits

import (
	"context"
	"sync/atomic"

	"internscout/internal/metrics"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter bounds simultaneous in-flight operations with a counting
// semaphore. Release must run on every exit path; callers pair Acquire with
// an immediate defer.
type ConcurrencyLimiter struct {
	sem      *semaphore.Weighted
	capacity int
	active   atomic.Int64
}

func NewConcurrencyLimiter(maxConcurrent int) (*ConcurrencyLimiter, error) {

	if maxConcurrent <= 0 {
		return nil, errors.New("max concurrent must be greater than zero")
	}

	log.Infof("concurrency limiter initialized: max %d concurrent operations", maxConcurrent)
	return &ConcurrencyLimiter{
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		capacity: maxConcurrent,
	}, nil
}

func (c *ConcurrencyLimiter) Acquire(ctx context.Context) error {

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	active := c.active.Add(1)
	metrics.ActiveOperations.Inc()
	log.Debugf("acquired concurrency slot, active: %d", active)
	return nil
}

func (c *ConcurrencyLimiter) TryAcquire() bool {

	if !c.sem.TryAcquire(1) {
		return false
	}

	c.active.Add(1)
	metrics.ActiveOperations.Inc()
	return true
}

func (c *ConcurrencyLimiter) Release() {
	active := c.active.Add(-1)
	metrics.ActiveOperations.Dec()
	c.sem.Release(1)
	log.Debugf("released concurrency slot, active: %d", active)
}

type ConcurrencyStatus struct {
	Active    int
	Available int
	Capacity  int
}

func (c *ConcurrencyLimiter) Status() ConcurrencyStatus {
	active := int(c.active.Load())
	return ConcurrencyStatus{
		Active:    active,
		Available: c.capacity - active,
		Capacity:  c.capacity,
	}
}
