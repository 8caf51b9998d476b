package redis

import (
	"context"
	"fmt"
	"time"

	"starmf-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// StatusCache implements ports.OrderStatusCache using Redis.
type StatusCache struct {
	client *goredis.Client
	prefix string
}

// NewStatusCache creates a new Redis-backed order status cache.
func NewStatusCache(client *goredis.Client) *StatusCache {
	return &StatusCache{
		client: client,
		prefix: "order_status:",
	}
}

// Get retrieves a cached order status by reference number.
// Returns "" with no error when the key does not exist.
func (c *StatusCache) Get(ctx context.Context, refNo string) (domain.OrderStatus, error) {
	val, err := c.client.Get(ctx, c.prefix+refNo).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis status get: %w", err)
	}
	return domain.OrderStatus(val), nil
}

// Set stores an order status with TTL.
func (c *StatusCache) Set(ctx context.Context, refNo string, status domain.OrderStatus, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+refNo, string(status), ttl).Err(); err != nil {
		return fmt.Errorf("redis status set: %w", err)
	}
	return nil
}
