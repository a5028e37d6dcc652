package promotion

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

const snapshotKey = "promotions:snapshot"

// Cache stores the promotion catalog snapshot in Redis as JSON.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache constructs a snapshot cache. A nil client disables caching.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached snapshot and whether it was present.
func (c *Cache) Get(ctx context.Context) ([]pricing.Promotion, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var promotions []pricing.Promotion
	if err := json.Unmarshal(data, &promotions); err != nil {
		return nil, false, err
	}
	return promotions, true, nil
}

// Set stores the snapshot with the configured TTL.
func (c *Cache) Set(ctx context.Context, promotions []pricing.Promotion) error {
	if c == nil || c.client == nil {
		return nil
	}
	if promotions == nil {
		promotions = []pricing.Promotion{}
	}
	data, err := json.Marshal(promotions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, data, c.ttl).Err()
}

// Invalidate drops the snapshot so the next load reads the store.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotKey).Err()
}
