package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront/internal/infra/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cache.NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestNopCache_AlwaysMiss(t *testing.T) {
	var c cache.NopCache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1))
	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

// REDIS_TEST_ADDR があるときだけ実サーバーで確認する
func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()

	client, err := cache.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedisCache(client, "test:"+uuid.NewString()+":", time.Minute)

	type item struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	require.NoError(t, c.Set(ctx, "product:1", item{Name: "Phone", Price: "499.99"}))

	var got item
	hit, err := c.Get(ctx, "product:1", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "Phone", got.Name)

	require.NoError(t, c.Delete(ctx, "product:1"))
	hit, err = c.Get(ctx, "product:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
