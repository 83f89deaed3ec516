package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*PUUIDCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPUUIDCache(client, ttl), mr
}

func TestPUUIDCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	_, ok, err := c.Get(context.Background(), "Faker", "KR1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPUUIDCache_SetGetCaseInsensitive(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "Faker", "KR1", "p-faker"))

	puuid, ok, err := c.Get(ctx, "faker", "kr1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p-faker", puuid)

	assert.True(t, mr.Exists("puuid:faker#kr1"))
	assert.Equal(t, time.Hour, mr.TTL("puuid:faker#kr1"))
}

func TestPUUIDCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "Faker", "KR1", "p-faker"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "Faker", "KR1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPUUIDCache_DefaultTTL(t *testing.T) {
	c, _ := newTestCache(t, 0)
	assert.Equal(t, defaultPUUIDTTL, c.ttl)
}

func TestPUUIDCache_ServerDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewPUUIDCache(client, time.Hour)

	_, _, err := c.Get(context.Background(), "Faker", "KR1")
	assert.Error(t, err)
}
