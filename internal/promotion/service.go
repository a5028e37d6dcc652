package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/lock"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// ErrCatalogUnavailable is returned when promotions cannot be loaded.
var ErrCatalogUnavailable = errors.New("promotion catalog unavailable")

// Source loads promotions that have not ended at since.
type Source interface {
	ListPromotions(ctx context.Context, since time.Time) ([]pricing.Promotion, error)
}

// StaticSource serves a fixed promotion list.
type StaticSource []pricing.Promotion

// ListPromotions returns a copy of the list, ignoring since.
func (s StaticSource) ListPromotions(context.Context, time.Time) ([]pricing.Promotion, error) {
	return append([]pricing.Promotion(nil), s...), nil
}

const (
	refillLockKey = "promotions:snapshot:refill"
	refillLockTTL = 5 * time.Second
)

// Service serves the promotion catalog, preferring the cached snapshot.
// With a Lock, only one instance reloads the store after the snapshot
// expires; the others wait and read the refreshed snapshot.
type Service struct {
	Source  Source
	Cache   *Cache
	Lock    *lock.Locker
	Metrics *obs.PricingMetrics
	Logger  zerolog.Logger
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the current promotion catalog. Cache and lock failures are
// logged and fall through to the source.
func (s *Service) List(ctx context.Context) ([]pricing.Promotion, error) {
	if s == nil || s.Source == nil {
		return nil, ErrCatalogUnavailable
	}
	if cached, ok := s.cached(ctx); ok {
		return cached, nil
	}
	if s.Lock == nil {
		return s.refill(ctx)
	}

	var (
		promotions []pricing.Promotion
		loadErr    error
	)
	lockErr := s.Lock.WithLock(ctx, refillLockKey, refillLockTTL, func(ctx context.Context) error {
		if cached, ok := s.cached(ctx); ok {
			promotions = cached
			return nil
		}
		promotions, loadErr = s.refill(ctx)
		return nil
	})
	if lockErr != nil {
		s.Logger.Warn().Err(lockErr).Msg("acquire promotion refill lock")
		return s.refill(ctx)
	}
	return promotions, loadErr
}

func (s *Service) cached(ctx context.Context) ([]pricing.Promotion, bool) {
	promotions, ok, err := s.Cache.Get(ctx)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("read promotion cache")
		return nil, false
	}
	if ok {
		s.Metrics.CatalogLookup("cache")
	}
	return promotions, ok
}

func (s *Service) refill(ctx context.Context) ([]pricing.Promotion, error) {
	promotions, err := s.Source.ListPromotions(ctx, s.now())
	if err != nil {
		s.Metrics.CatalogLookup("error")
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	s.Metrics.CatalogLookup("store")
	if err := s.Cache.Set(ctx, promotions); err != nil {
		s.Logger.Warn().Err(err).Msg("write promotion cache")
	}
	return promotions, nil
}

// Grouped returns the promotions valid right now, split by type.
func (s *Service) Grouped(ctx context.Context) (pricing.Groups, error) {
	promotions, err := s.List(ctx)
	if err != nil {
		return pricing.Groups{}, err
	}
	return pricing.GroupPromotions(promotions, s.now()), nil
}

// Refresh drops the cached snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.Cache.Invalidate(ctx)
}
