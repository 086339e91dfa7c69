package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestRedisTokenCache(t *testing.T) {
	s := newMiniredis(t)
	rdb, err := NewRedisClient("redis://" + s.Addr())
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()
	c := NewRedisTokenCache(rdb)

	_, ok, err := c.Get(ctx, "paypal")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "paypal", "tok", time.Minute))
	val, ok, err := c.Get(ctx, "paypal")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", val)

	s.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "paypal")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLocker(t *testing.T) {
	s := newMiniredis(t)
	rdb, err := NewRedisClient("redis://" + s.Addr())
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()
	l := NewRedisLocker(rdb)

	release, err := l.Acquire(ctx, "sweep:user-1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "sweep:user-1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := l.Acquire(ctx, "sweep:user-2", time.Minute)
	require.NoError(t, err)
	other()

	release()
	again, err := l.Acquire(ctx, "sweep:user-1", time.Minute)
	require.NoError(t, err)
	again()
}

func TestRedisLockerExpiredReleaseKeepsNewHolder(t *testing.T) {
	s := newMiniredis(t)
	rdb, err := NewRedisClient("redis://" + s.Addr())
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()
	l := NewRedisLocker(rdb)

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	s.FastForward(2 * time.Second)

	_, err = l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	stale()
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient("redis://127.0.0.1:1")
	assert.Error(t, err)

	_, err = NewRedisClient("://bad")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	val, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	now = now.Add(time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)

	release, err := s.Acquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	_, err = s.Acquire(ctx, "lock", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
	release()
	_, err = s.Acquire(ctx, "lock", time.Minute)
	assert.NoError(t, err)
}
