package limits

import "context"

// Gate is the single admission point for remote operations: rate tokens are
// acquired first (pacing arrival), then a concurrency slot (bounding
// simultaneity). Leave releases the slot; spent tokens are not returned.
type Gate struct {
	rate *RateLimiter
	conc *ConcurrencyLimiter
}

func NewGate(rate *RateLimiter, conc *ConcurrencyLimiter) *Gate {
	return &Gate{rate: rate, conc: conc}
}

func (g *Gate) Enter(ctx context.Context) error {

	if err := g.rate.Acquire(ctx, 1); err != nil {
		return err
	}

	return g.conc.Acquire(ctx)
}

func (g *Gate) Leave() {
	g.conc.Release()
}

func (g *Gate) RateStatus() RateStatus {
	return g.rate.Status()
}

func (g *Gate) ConcurrencyStatus() ConcurrencyStatus {
	return g.conc.Status()
}
