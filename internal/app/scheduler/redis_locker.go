package scheduler

import (
	"context"
	"time"

	"stratools/internal/app/infra/persistence/redis"
)

// RedisLocker 基于 Redis 的任务锁
type RedisLocker struct {
	locker *redis.Locker
}

// NewRedisLocker 适配 redis.Locker
func NewRedisLocker(locker *redis.Locker) *RedisLocker {
	return &RedisLocker{locker: locker}
}

// TryLock 实现 Locker
func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (Releaser, bool, error) {
	lock, ok, err := l.locker.TryLock(ctx, name, ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return lock, true, nil
}
