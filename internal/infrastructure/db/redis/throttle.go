package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
)

// Throttle limits email-sending actions per key within a rolling window,
// backed by a Redis counter with TTL.
// Key format: throttle:<action>:<key>
type Throttle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

var _ ports.Throttle = (*Throttle)(nil)

// NewThrottle creates a Throttle allowing limit calls per window.
func NewThrottle(client *redis.Client, limit int, window time.Duration) *Throttle {
	return &Throttle{client: client, limit: int64(limit), window: window}
}

// Allow consumes one unit of budget for (action, key). Returns
// domain.ErrThrottled once the window's budget is spent.
func (t *Throttle) Allow(ctx context.Context, action, key string) error {
	k := t.key(action, key)

	n, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		// First hit in this window opens it.
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
	}
	if n > t.limit {
		return domain.ErrThrottled
	}
	return nil
}

func (t *Throttle) key(action, key string) string {
	return fmt.Sprintf("throttle:%s:%s", action, key)
}
