package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamehub-auth/internal/cache"
	"github.com/pribylovaa/gamehub-auth/internal/models"
)

func newSessions(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return m, New(cache.NewWithClient(rdb, "auth:"), 2*time.Hour)
}

func TestPutGet_RoundTripWithTTL(t *testing.T) {
	m, c := newSessions(t)
	ctx := context.Background()

	info := &models.UserInfo{ID: 7, Username: "alice", Email: "a@x.com", Nickname: "Alice", Roles: []string{"USER"}}
	require.NoError(t, c.Put(ctx, info))
	require.Equal(t, 2*time.Hour, m.TTL("auth:session:7"))

	got, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, info, got)

	m.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, 7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPut_GuestNotCached(t *testing.T) {
	m, c := newSessions(t)

	require.NoError(t, c.Put(context.Background(), &models.UserInfo{ID: models.GuestSubjectID, Guest: true}))
	require.Empty(t, m.Keys())
}

func TestGet_CorruptedEntryIsMiss(t *testing.T) {
	m, c := newSessions(t)
	require.NoError(t, m.Set("auth:session:9", "{not json"))

	got, ok, err := c.Get(context.Background(), 9)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInvalidate(t *testing.T) {
	m, c := newSessions(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &models.UserInfo{ID: 3, Username: "bob"}))
	require.NoError(t, c.Invalidate(ctx, models.Registered(3)))
	require.False(t, m.Exists("auth:session:3"))

	// Гость и отсутствующая запись — не ошибка.
	require.NoError(t, c.Invalidate(ctx, models.Guest()))
	require.NoError(t, c.Invalidate(ctx, models.Registered(3)))
}
