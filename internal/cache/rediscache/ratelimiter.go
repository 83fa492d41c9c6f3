package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// minuteWindowTTL keeps a minute bucket alive a bit past its minute so late INCRs still count.
const minuteWindowTTL = 70 * time.Second

type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return NewRateLimiterWithClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRateLimiterWithClient(c *redis.Client) *RateLimiter {
	return &RateLimiter{c: c}
}

// Allow делает INCR по ключу и ставит TTL окна.
// Возвращает (allowed, currentCount).
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// AllowPerMinute counts hits for scope in the calendar minute of now.
func (rl *RateLimiter) AllowPerMinute(ctx context.Context, scope string, limit int64, now time.Time) (bool, int64, error) {
	return rl.Allow(ctx, MinuteKey(scope, now), limit, minuteWindowTTL)
}

func MinuteKey(scope string, now time.Time) string {
	return fmt.Sprintf("rl:%s:%s", scope, now.UTC().Format("200601021504"))
}
