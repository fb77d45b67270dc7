package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/storeapi/domain"
)

// FixedWindowLimiter counts hits per key in Redis. The window starts on the
// first hit and the counter expires with it.
type FixedWindowLimiter struct {
	redis  redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// NewFixedWindowLimiter creates a limiter allowing limit hits per window
func NewFixedWindowLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) domain.RateLimiter {
	return &FixedWindowLimiter{
		redis:  client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// Allow implements domain.RateLimiter
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	count, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limiter unavailable: %w", err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limiter unavailable: %w", err)
		}
	}
	return count <= l.limit, nil
}
