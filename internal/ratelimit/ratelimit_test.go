package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamehub-auth/internal/cache"
)

func newLimiter(t *testing.T) (*miniredis.Miniredis, *Limiter) {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return m, New(cache.NewWithClient(rdb, "auth:"), 0)
}

func TestTryAcquire_BlocksWithinCooldown(t *testing.T) {
	m, l := newLimiter(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "a@x.com", "register")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, m.Exists("auth:rl:register:a@x.com"))
	require.Equal(t, DefaultCooldown, m.TTL("auth:rl:register:a@x.com"))

	ok, err = l.TryAcquire(ctx, "a@x.com", "register")
	require.NoError(t, err)
	require.False(t, ok)

	// У другого действия свой маркер.
	ok, err = l.TryAcquire(ctx, "a@x.com", "reset")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTryAcquire_AllowsAfterCooldown(t *testing.T) {
	m, l := newLimiter(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "a@x.com", "register")
	require.NoError(t, err)
	require.True(t, ok)

	m.FastForward(59 * time.Second)
	ok, err = l.TryAcquire(ctx, "a@x.com", "register")
	require.NoError(t, err)
	require.False(t, ok)

	m.FastForward(time.Second)
	ok, err = l.TryAcquire(ctx, "a@x.com", "register")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRelease(t *testing.T) {
	_, l := newLimiter(t)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "a@x.com", "reset")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "a@x.com", "reset"))

	ok, err = l.TryAcquire(ctx, "a@x.com", "reset")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTryAcquire_CacheDown(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	m.Close()

	l := New(cache.NewWithClient(rdb, ""), time.Minute)
	ok, err := l.TryAcquire(context.Background(), "a@x.com", "register")
	require.Error(t, err)
	require.False(t, ok)
}
