package limits

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_ConcurrencyLimiter_NeverExceedsCapacity(t *testing.T) {
	limiter, err := NewConcurrencyLimiter(3)
	assert.NoError(t, err)

	var maxObserved atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			assert.NoError(t, limiter.Acquire(context.Background()))
			defer limiter.Release()

			active := int64(limiter.Status().Active)
			for {
				seen := maxObserved.Load()
				if active <= seen || maxObserved.CompareAndSwap(seen, active) {
					break
				}
			}
			time.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxObserved.Load(), int64(3))
	assert.Equal(t, 0, limiter.Status().Active)
	assert.Equal(t, 3, limiter.Status().Available)
}

func Test_ConcurrencyLimiter_TryAcquire(t *testing.T) {
	limiter, err := NewConcurrencyLimiter(1)
	assert.NoError(t, err)

	assert.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire())

	limiter.Release()
	assert.True(t, limiter.TryAcquire())
	limiter.Release()
}

func Test_ConcurrencyLimiter_ReleaseOpensSlotForWaiter(t *testing.T) {
	limiter, err := NewConcurrencyLimiter(1)
	assert.NoError(t, err)

	assert.NoError(t, limiter.Acquire(context.Background()))

	acquired := make(chan struct{})
	go func() {
		_ = limiter.Acquire(context.Background())
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	limiter.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was not admitted after release")
	}
	limiter.Release()
}

func Test_ConcurrencyLimiter_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewConcurrencyLimiter(0)
	assert.Error(t, err)
}

func Test_Gate_LeaveAdmitsNextOperation(t *testing.T) {
	rateLimiter, err := NewRateLimiter(600, SystemClock())
	assert.NoError(t, err)
	concLimiter, err := NewConcurrencyLimiter(1)
	assert.NoError(t, err)

	gate := NewGate(rateLimiter, concLimiter)
	assert.NoError(t, gate.Enter(context.Background()))
	assert.Equal(t, 1, gate.ConcurrencyStatus().Active)

	entered := make(chan struct{})
	go func() {
		_ = gate.Enter(context.Background())
		close(entered)
	}()

	select {
	case <-entered:
		t.Fatal("gate must hold the second operation while the slot is taken")
	case <-time.After(50 * time.Millisecond):
	}

	gate.Leave()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("gate did not admit the waiter after leave")
	}
	gate.Leave()
}
