package cache

import (
	"context"
	"encoding/json"
	"time"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisOrderCache keeps whole orders as JSON under order:<id>. Every caller
// treats it as best-effort; the repo stays the source of truth.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)

func key(id string) string { return "order:" + id }

func (c *RedisOrderCache) Get(ctx context.Context, id string) (*domain.Order, bool, error) {
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		// Stale or corrupt entry; drop it and report a miss.
		_ = c.rdb.Del(ctx, key(id)).Err()
		return nil, false, nil
	}
	return &o, true, nil
}

func (c *RedisOrderCache) Set(ctx context.Context, o *domain.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(o.ID), raw, c.ttl).Err()
}

func (c *RedisOrderCache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, key(id)).Err()
}
