package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelWarningsRefreshed 检测任务完成通知频道
const ChannelWarningsRefreshed = "stratools:warnings:refreshed"

// WarningsRefreshed 告警全量刷新完成通知
type WarningsRefreshed struct {
	Job        string    `json:"job"`
	Warnings   int       `json:"warnings"`
	FinishedAt time.Time `json:"finishedAt"`
}

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(client *redis.Client) *PubSub {
	return &PubSub{client: client}
}

// PublishWarningsRefreshed 发布告警刷新通知
func (p *PubSub) PublishWarningsRefreshed(ctx context.Context, n *WarningsRefreshed) error {
	msgJSON, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelWarningsRefreshed, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// RefreshSubscription 已建立的刷新通知订阅
type RefreshSubscription struct {
	sub *redis.PubSub
	ch  <-chan *redis.Message
}

// SubscribeWarningsRefreshed 订阅刷新通知，返回时订阅已生效
func (p *PubSub) SubscribeWarningsRefreshed(ctx context.Context) (*RefreshSubscription, error) {
	sub := p.client.Subscribe(ctx, ChannelWarningsRefreshed)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return &RefreshSubscription{sub: sub, ch: sub.Channel()}, nil
}

// Wait 等待一条通知，支持超时控制
func (s *RefreshSubscription) Wait(ctx context.Context, timeout time.Duration) (*WarningsRefreshed, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil, fmt.Errorf("subscription closed")
		}
		var n WarningsRefreshed
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
		}
		return &n, nil
	case <-timeoutCtx.Done():
		return nil, timeoutCtx.Err()
	}
}

// Close 取消订阅
func (s *RefreshSubscription) Close() error {
	return s.sub.Close()
}
