package redis_test

import (
	"context"
	"testing"
	"time"

	"lnledger/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewRateCache(client)
	ctx := context.Background()

	t.Run("empty cache returns nil", func(t *testing.T) {
		rates, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, rates)
	})

	t.Run("set then get", func(t *testing.T) {
		want := map[string]float64{"USD": 97123.45, "EUR": 89401.2}
		require.NoError(t, cache.Set(ctx, want, time.Minute))

		got, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("expires after TTL", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, map[string]float64{"USD": 1}, time.Minute))
		mr.FastForward(61 * time.Second)

		rates, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, rates)
	})
}
