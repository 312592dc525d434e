// Package pacing spaces outbound provider requests. The fixture
// provider has no documented quota; the spacing below is the rate the
// provider is known to tolerate, so removing it risks throttling.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between consecutive provider
// requests.
const DefaultInterval = 500 * time.Millisecond

// Pacer hands out at most one request slot per interval. A single Pacer
// is shared by all sync workers so the aggregate request rate stays
// bounded regardless of parallelism.
type Pacer struct {
	limiter *rate.Limiter
}

func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next request slot or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Interval reports the configured spacing between slots.
func (p *Pacer) Interval() time.Duration {
	if p == nil || p.limiter == nil {
		return 0
	}
	limit := p.limiter.Limit()
	if limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}
