package lmstfy

import (
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"stratools/internal/app/config"
)

// Message 队列消息
type Message struct {
	ID    string
	Queue string
	Data  []byte
}

// Client Lmstfy 客户端封装
type Client struct {
	cli *client.LmstfyClient
}

// NewClient 创建 Lmstfy 客户端
func NewClient(cfg config.LmstfyConfig) *Client {
	return &Client{
		cli: client.NewLmstfyClient(cfg.Host, cfg.Port, cfg.Namespace, cfg.Token),
	}
}

// Publish 发布消息，返回 job id
// ttl: 消息存活时间，tries: 最大投递次数，delay: 延迟投递
func (c *Client) Publish(queue string, data []byte, ttl time.Duration, tries uint16, delay time.Duration) (string, error) {
	jobID, err := c.cli.Publish(queue, data, uint32(ttl.Seconds()), tries, uint32(delay.Seconds()))
	if err != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return jobID, nil
}

// Consume 拉取一条消息，超时未拉到返回 nil, nil
// ttr: 处理超时，超时未 Ack 的消息会被重新投递
func (c *Client) Consume(queue string, ttr, timeout time.Duration) (*Message, error) {
	job, err := c.cli.Consume(queue, uint32(ttr.Seconds()), uint32(timeout.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}
	if job == nil {
		return nil, nil
	}
	return &Message{
		ID:    job.ID,
		Queue: job.Queue,
		Data:  job.Data,
	}, nil
}

// Ack 确认消息
func (c *Client) Ack(queue, jobID string) error {
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}
