package promotion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/lock"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/promotion"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type countingSource struct {
	promotions []pricing.Promotion
	err        error
	calls      int
}

func (s *countingSource) ListPromotions(context.Context, time.Time) ([]pricing.Promotion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.promotions, nil
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func samplePromotions() []pricing.Promotion {
	minQty := 2
	minWeight := decimal.NewFromInt(500)
	return []pricing.Promotion{
		{
			ID:            uuid.NewString(),
			Name:          "Ten off",
			Type:          pricing.PromotionPassive,
			RewardType:    pricing.RewardPercentage,
			DiscountValue: decimal.NewFromInt(10),
			StartDate:     now.Add(-time.Hour),
			EndDate:       now.Add(time.Hour),
			Published:     true,
			MinQuantity:   &minQty,
		},
		{
			ID:            uuid.NewString(),
			Name:          "Ship free",
			Type:          pricing.PromotionActive,
			RewardType:    pricing.RewardFreeShipping,
			DiscountValue: decimal.Zero,
			StartDate:     now.Add(-time.Hour),
			EndDate:       now.Add(time.Hour),
			Published:     true,
			Code:          "FREESHIP",
			Categories:    []string{"tea"},
			MinWeight:     &minWeight,
		},
		{
			ID:         uuid.NewString(),
			Name:       "Expired",
			Type:       pricing.PromotionPassive,
			RewardType: pricing.RewardFixedAmount,
			StartDate:  now.Add(-48 * time.Hour),
			EndDate:    now.Add(-24 * time.Hour),
			Published:  true,
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	mr, client := newRedis(t)
	cache := promotion.NewCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	want := samplePromotions()
	require.NoError(t, cache.Set(ctx, want))
	require.Equal(t, time.Minute, mr.TTL("promotions:snapshot"))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, len(want))
	require.Equal(t, want[1].Code, got[1].Code)
	require.Equal(t, want[1].Categories, got[1].Categories)
	require.True(t, want[1].MinWeight.Equal(*got[1].MinWeight))
	require.Equal(t, *want[0].MinQuantity, *got[0].MinQuantity)
	require.True(t, want[0].DiscountValue.Equal(got[0].DiscountValue))
	require.True(t, want[0].EndDate.Equal(got[0].EndDate))

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheExpires(t *testing.T) {
	mr, client := newRedis(t)
	cache := promotion.NewCache(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, samplePromotions()))
	mr.FastForward(31 * time.Second)

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *promotion.Cache
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, samplePromotions()))
	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.Invalidate(ctx))
}

func TestServiceListUsesCache(t *testing.T) {
	_, client := newRedis(t)
	reg := prometheus.NewRegistry()
	metrics := obs.NewPricingMetrics("test", reg)
	source := &countingSource{promotions: samplePromotions()}

	svc := &promotion.Service{
		Source:  source,
		Cache:   promotion.NewCache(client, time.Minute),
		Metrics: metrics,
		Now:     func() time.Time { return now },
	}
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 3)
	require.Equal(t, 1, source.calls)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.CatalogLookups.WithLabelValues("store")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.CatalogLookups.WithLabelValues("cache")))

	require.NoError(t, svc.Refresh(ctx))
	_, err = svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestServiceGrouped(t *testing.T) {
	svc := &promotion.Service{
		Source: promotion.StaticSource(samplePromotions()),
		Now:    func() time.Time { return now },
	}

	groups, err := svc.Grouped(context.Background())
	require.NoError(t, err)
	require.Len(t, groups.Passive, 1)
	require.Equal(t, "Ten off", groups.Passive[0].Name)
	require.Len(t, groups.Active, 1)
	require.Equal(t, "FREESHIP", groups.Active[0].Code)
}

func TestServiceSourceFailure(t *testing.T) {
	boom := errors.New("connection refused")
	svc := &promotion.Service{Source: &countingSource{err: boom}}

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, promotion.ErrCatalogUnavailable)
	require.ErrorIs(t, err, boom)
}

func TestServiceSurvivesRedisOutage(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	source := &countingSource{promotions: samplePromotions()}
	svc := &promotion.Service{Source: source, Cache: promotion.NewCache(client, time.Minute), Logger: zerolog.Nop()}

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 1, source.calls)
}

func TestNilServiceUnavailable(t *testing.T) {
	var svc *promotion.Service
	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, promotion.ErrCatalogUnavailable)
}

func TestServiceRefillLockSharesSnapshot(t *testing.T) {
	_, client := newRedis(t)
	source := &countingSource{promotions: samplePromotions()}
	cache := promotion.NewCache(client, time.Minute)
	locker := &lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond}

	first := &promotion.Service{Source: source, Cache: cache, Lock: locker}
	second := &promotion.Service{Source: source, Cache: cache, Lock: locker}
	ctx := context.Background()

	got, err := first.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	got, err = second.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 1, source.calls)
}

func TestServiceLockFailureFallsBackToSource(t *testing.T) {
	source := &countingSource{promotions: samplePromotions()}
	svc := &promotion.Service{Source: source, Lock: &lock.Locker{}, Logger: zerolog.Nop()}

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 1, source.calls)
}
