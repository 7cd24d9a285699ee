package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocker_SingleHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	locker := NewLocker(client, "stratools:job:")

	lock, ok, err := locker.TryLock(ctx, "duplicate_detection", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("stratools:job:duplicate_detection"))

	_, ok, err = locker.TryLock(ctx, "duplicate_detection", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists("stratools:job:duplicate_detection"))

	again, ok, err := locker.TryLock(ctx, "duplicate_detection", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, again.Release(ctx))
}

func TestLocker_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	locker := NewLocker(client, "lock:")

	old, ok, err := locker.TryLock(ctx, "job", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	current, ok, err := locker.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, old.Release(ctx), ErrLockNotHeld)
	assert.True(t, mr.Exists("lock:job"))
	require.NoError(t, current.Release(ctx))
}

func TestLock_Refresh(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	locker := NewLocker(client, "lock:")

	lock, ok, err := locker.TryLock(ctx, "job", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lock.Refresh(ctx, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("lock:job"))

	// 过期后被他人获取，旧持有者不能续期
	mr.FastForward(2 * time.Minute)
	other, ok, err := locker.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, lock.Refresh(ctx, time.Minute), ErrLockNotHeld)
	require.NoError(t, other.Release(ctx))
}

func TestPubSub_WarningsRefreshed(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	ps := NewPubSub(client)

	sub, err := ps.SubscribeWarningsRefreshed(ctx)
	require.NoError(t, err)
	defer sub.Close()

	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ps.PublishWarningsRefreshed(ctx, &WarningsRefreshed{Job: "duplicate_detection", Warnings: 4, FinishedAt: finished}))

	n, err := sub.Wait(ctx, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "duplicate_detection", n.Job)
	assert.Equal(t, 4, n.Warnings)
	assert.True(t, finished.Equal(n.FinishedAt))
}

func TestPubSub_WaitTimeout(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)

	sub, err := NewPubSub(client).SubscribeWarningsRefreshed(ctx)
	require.NoError(t, err)
	defer sub.Close()

	_, err = sub.Wait(ctx, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
