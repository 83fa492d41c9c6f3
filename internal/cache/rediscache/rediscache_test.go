package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "shipment:tracking:SB1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "shipment:tracking:SB1", []byte(`{"status":"pending"}`), time.Minute))

	b, ok, err := c.Get(ctx, "shipment:tracking:SB1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"status":"pending"}`, string(b))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "shipment:tracking:SB1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	require.False(t, ok)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)
}

func TestRateLimiter_AllowPerMinute_SeparateWindows(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())
	ctx := context.Background()

	t0 := time.Date(2026, 5, 1, 12, 0, 30, 0, time.UTC)
	ok, _, err := rl.AllowPerMinute(ctx, "calc:10.0.0.1", 1, t0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, _ = rl.AllowPerMinute(ctx, "calc:10.0.0.1", 1, t0.Add(10*time.Second))
	require.False(t, ok)

	ok, n, _ := rl.AllowPerMinute(ctx, "calc:10.0.0.1", 1, t0.Add(time.Minute))
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	require.True(t, mr.Exists(MinuteKey("calc:10.0.0.1", t0)))
	require.Equal(t, "rl:calc:10.0.0.1:202605011200", MinuteKey("calc:10.0.0.1", t0))
}

func TestRedisCache_RateLimiterSharesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	rl := c.RateLimiter()

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:shared", 5, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	require.NoError(t, c.Close())
	_, _, err = rl.Allow(ctx, "rl:shared", 5, time.Minute)
	require.ErrorIs(t, err, redis.ErrClosed)
}
