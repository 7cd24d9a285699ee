package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stratools/internal/app/config"
)

// NewClient 创建 Redis 客户端并测试连接
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
