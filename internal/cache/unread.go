package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omarionnn/mom-app/internal/config"
)

// UnreadCache caches the per-user total unread badge count. Postgres stays
// the source of truth; a miss recomputes and callers invalidate on every
// message insert or thread read.
type UnreadCache interface {
	Get(ctx context.Context, userID int) (int, bool, error)
	Set(ctx context.Context, userID, count int) error
	Invalidate(ctx context.Context, userID int) error
}

const unreadTTL = 5 * time.Minute

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// RedisUnreadCache is the go-redis implementation of UnreadCache.
type RedisUnreadCache struct {
	client *redis.Client
}

// NewRedisUnreadCache constructs a RedisUnreadCache.
func NewRedisUnreadCache(client *redis.Client) *RedisUnreadCache {
	return &RedisUnreadCache{client: client}
}

func unreadKey(userID int) string {
	return fmt.Sprintf("unread:%d", userID)
}

// Get returns the cached count and whether it was present.
func (c *RedisUnreadCache) Get(ctx context.Context, userID int) (int, bool, error) {
	count, err := c.client.Get(ctx, unreadKey(userID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// Set stores the count with a TTL as a backstop against missed
// invalidations.
func (c *RedisUnreadCache) Set(ctx context.Context, userID, count int) error {
	return c.client.Set(ctx, unreadKey(userID), count, unreadTTL).Err()
}

// Invalidate drops the cached count.
func (c *RedisUnreadCache) Invalidate(ctx context.Context, userID int) error {
	return c.client.Del(ctx, unreadKey(userID)).Err()
}
