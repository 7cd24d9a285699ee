package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockNotHeld 释放时锁已过期或被他人持有
var ErrLockNotHeld = errors.New("lock not held")

// 仅当 value 与持有者令牌一致时删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// 仅当 value 与持有者令牌一致时续期
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker 基于 SET NX PX 的分布式锁
type Locker struct {
	client *redis.Client
	prefix string
}

// NewLocker 创建分布式锁，key 统一加前缀
func NewLocker(client *redis.Client, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Lock 已获取的锁
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// TryLock 尝试加锁，被占用时返回 nil, false, nil
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (*Lock, bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}

	key := l.prefix + name
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{client: l.client, key: key, token: token}, true, nil
}

// Release 释放锁
func (lk *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lk.key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Refresh 续期，锁已过期或被他人持有时返回 ErrLockNotHeld
func (lk *Lock) Refresh(ctx context.Context, ttl time.Duration) error {
	n, err := refreshScript.Run(ctx, lk.client, []string{lk.key}, lk.token, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to refresh lock %s: %w", lk.key, err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
