package consumer

import (
	"encoding/json"
	"fmt"
	"time"
)

// TriggerMessage 手动触发任务的队列消息
type TriggerMessage struct {
	Job         string    `json:"job"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Publisher 队列发布接口
type Publisher interface {
	Publish(queue string, data []byte, ttl time.Duration, tries uint16, delay time.Duration) (string, error)
}

// TriggerPublisher 将手动触发请求投递到队列，由 worker 进程执行
type TriggerPublisher struct {
	queue     Publisher
	queueName string
}

// NewTriggerPublisher 创建触发发布者
func NewTriggerPublisher(queue Publisher, queueName string) *TriggerPublisher {
	return &TriggerPublisher{queue: queue, queueName: queueName}
}

// PublishTrigger 投递触发消息，返回队列 job id
func (p *TriggerPublisher) PublishTrigger(job, requestedBy string) (string, error) {
	payload, err := json.Marshal(&TriggerMessage{
		Job:         job,
		RequestedBy: requestedBy,
		RequestedAt: time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal trigger failed: %w", err)
	}
	// 触发消息 1 小时内有效，最多投递 3 次
	return p.queue.Publish(p.queueName, payload, time.Hour, 3, 0)
}

func parseTrigger(data []byte) (*TriggerMessage, error) {
	var msg TriggerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal trigger failed: %w", err)
	}
	if msg.Job == "" {
		return nil, fmt.Errorf("job is required")
	}
	return &msg, nil
}
