// Package cache provides a small Redis-backed cache for listing
// responses. A cache miss or Redis failure is never fatal; callers fall
// through to the store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPublishedEvents caches the public published-events listing.
const KeyPublishedEvents = "events:published"

// Cache wraps a Redis client with a fixed TTL.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a cache client and verifies connectivity.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("cache connected", zap.String("addr", addr))
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}, nil
}

// Get returns the cached payload for key, if present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

// Set stores payload under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
