package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeyIsCreatedWithTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	pipe := client.TxPipeline()
	set, incr := queueRateLimit(context.Background(), pipe, "ratelimit:order:1.2.3.4", time.Minute)

	assert.Equal(t, "set", set.Name())
	assert.Contains(t, set.Args(), "nx")
	assert.Contains(t, set.Args(), "ex")
	assert.Equal(t, "incr", incr.Name())
	assert.Equal(t, "ratelimit:order:1.2.3.4", incr.Args()[1])
}

func TestIncrementRateLimit_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR absent, test Redis ignoré")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	key := "ratelimit:test:" + time.Now().Format(time.RFC3339Nano)
	defer client.Del(ctx, key)

	for want := int64(1); want <= 3; want++ {
		got, err := IncrementRateLimit(ctx, client, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestGetJSONWithoutClient(t *testing.T) {
	_, ok := GetJSON[[]string](context.Background(), nil, CatalogKey)
	assert.False(t, ok)
	SetJSON(context.Background(), nil, CatalogKey, []string{"x"}, time.Minute)
	Invalidate(context.Background(), nil, CatalogKey)
}
