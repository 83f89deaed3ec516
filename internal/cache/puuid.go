package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"matchstats/internal/service"
)

var _ service.PUUIDCache = (*PUUIDCache)(nil)

const (
	puuidKeyPrefix  = "puuid:"
	defaultPUUIDTTL = 24 * time.Hour
)

// PUUIDCache stores Riot ID to puuid lookups in Redis. Riot IDs are case
// insensitive, so keys are lowercased.
type PUUIDCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPUUIDCache creates a cache whose entries expire after ttl.
func NewPUUIDCache(client *redis.Client, ttl time.Duration) *PUUIDCache {
	if ttl <= 0 {
		ttl = defaultPUUIDTTL
	}
	return &PUUIDCache{client: client, ttl: ttl}
}

// Get returns the cached puuid for a Riot ID. ok is false on a miss.
func (c *PUUIDCache) Get(ctx context.Context, gameName, tagLine string) (string, bool, error) {
	puuid, err := c.client.Get(ctx, puuidKey(gameName, tagLine)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get cached puuid: %w", err)
	}
	return puuid, true, nil
}

// Set stores the puuid of a Riot ID.
func (c *PUUIDCache) Set(ctx context.Context, gameName, tagLine, puuid string) error {
	if err := c.client.Set(ctx, puuidKey(gameName, tagLine), puuid, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached puuid: %w", err)
	}
	return nil
}

func puuidKey(gameName, tagLine string) string {
	return puuidKeyPrefix + strings.ToLower(gameName) + "#" + strings.ToLower(tagLine)
}
