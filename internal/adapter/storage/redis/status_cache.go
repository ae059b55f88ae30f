package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"klikjasa-wallet/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// StatusCache implements ports.StatusCache using Redis.
type StatusCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewStatusCache creates a new Redis-backed status cache.
func NewStatusCache(client goredis.UniversalClient) *StatusCache {
	return &StatusCache{
		client: client,
		prefix: "topup:status:",
	}
}

// Get returns the cached status for an order. The second return value is
// false when nothing is cached.
func (c *StatusCache) Get(ctx context.Context, orderID string) (domain.TransactionStatus, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+orderID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis status get: %w", err)
	}
	return domain.TransactionStatus(val), true, nil
}

// Set caches a status. Only terminal statuses are accepted.
func (c *StatusCache) Set(ctx context.Context, orderID string, status domain.TransactionStatus, ttl time.Duration) error {
	if !status.IsTerminal() {
		return fmt.Errorf("redis status set: refusing to cache non-terminal status %q", status)
	}
	if err := c.client.Set(ctx, c.prefix+orderID, string(status), ttl).Err(); err != nil {
		return fmt.Errorf("redis status set: %w", err)
	}
	return nil
}
