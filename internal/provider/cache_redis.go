package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

const redisCacheTTL = 24 * time.Hour

// RedisCache is the fast cache tier. Entries expire; the durable SQLite
// tier keeps the last successful load indefinitely.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	payload, err := c.client.Get(ctx, "geoquiz:cache:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %q: %w", key, err)
	}

	var entities map[geoquiz.Code]geoquiz.EntityInfo
	if err := json.Unmarshal(payload, &entities); err != nil {
		return nil, ErrCacheMiss
	}
	return entities, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, entities map[geoquiz.Code]geoquiz.EntityInfo) error {
	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}
	if err := c.client.Set(ctx, "geoquiz:cache:"+key, payload, redisCacheTTL).Err(); err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}
