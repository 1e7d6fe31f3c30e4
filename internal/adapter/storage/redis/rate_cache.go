package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateCache caches fiat exchange rates in Redis so the upstream feed is
// polled at most once per TTL across all requests.
type RateCache struct {
	client *goredis.Client
	key    string
}

// NewRateCache creates a Redis-backed exchange rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		key:    "rates:btc",
	}
}

// Get returns the cached rates, or nil when the cache is empty or expired.
func (c *RateCache) Get(ctx context.Context) (map[string]float64, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get rates: %w", err)
	}

	var rates map[string]float64
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("decode cached rates: %w", err)
	}
	return rates, nil
}

// Set stores the rates with the given TTL.
func (c *RateCache) Set(ctx context.Context, rates map[string]float64, ttl time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set rates: %w", err)
	}
	return nil
}
