package promotion

import (
	"context"
	"time"

	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

// GuardedSource fails fast with resilience.ErrOpenCircuit while Postgres is
// unhealthy, so quotes degrade without waiting on query timeouts.
type GuardedSource struct {
	Source  Source
	Breaker *resilience.Breaker
	Timeout time.Duration
}

// ListPromotions loads through the breaker, bounded by Timeout when set.
func (g GuardedSource) ListPromotions(ctx context.Context, since time.Time) ([]pricing.Promotion, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	if g.Breaker == nil {
		return g.Source.ListPromotions(ctx, since)
	}
	var promotions []pricing.Promotion
	err := g.Breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		promotions, err = g.Source.ListPromotions(ctx, since)
		return err
	})
	return promotions, err
}
