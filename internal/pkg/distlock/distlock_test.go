package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisLockAcquireRelease(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "job:collect_news", 30*time.Second)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second holder must not get the same lock
	other := NewRedisLock(client, "job:collect_news", 30*time.Second)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))

	// Released lock is acquirable again
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	a := NewRedisLock(client, "job:retention", time.Minute)
	b := NewRedisLock(client, "job:retention", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// b never acquired, so its release must not free a's lock
	require.NoError(t, b.Release(ctx))

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLockExtendRenewsTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "job:trending", time.Minute)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(45 * time.Second)
	require.NoError(t, lock.Extend(ctx))

	// The renewed TTL carries past the original expiry
	mr.FastForward(45 * time.Second)
	other := NewRedisLock(client, "job:trending", time.Minute)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLockExtendAfterExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "job:gazette", time.Second)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	assert.Error(t, lock.Extend(ctx), "an expired lock must not be silently re-extended")
}

func TestNewLockPrefersRedis(t *testing.T) {
	_, client := newTestRedis(t)

	lock := NewLock(client, nil, "job:news", time.Minute)
	_, isRedis := lock.(*RedisLock)
	assert.True(t, isRedis)

	lock = NewLock(nil, nil, "job:news", time.Minute)
	_, isAdvisory := lock.(*AdvisoryLock)
	assert.True(t, isAdvisory)
}
