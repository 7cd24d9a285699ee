package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stratools/internal/app/infra/mq/lmstfy"
	"stratools/internal/app/pkg/logger"
	"stratools/internal/app/scheduler"
)

// Source 队列消费接口
type Source interface {
	Consume(queue string, ttr, timeout time.Duration) (*lmstfy.Message, error)
	Ack(queue, jobID string) error
}

// Runner 任务执行接口
type Runner interface {
	RunNow(ctx context.Context, name string) error
}

// Config 消费者配置
type Config struct {
	QueueName    string        // 队列名称
	Timeout      time.Duration // 拉取消息超时
	TTR          time.Duration // Time-To-Run，应大于任务最长执行时间
	PollInterval time.Duration // 出错后的退避间隔
}

// TriggerConsumer 触发消费者
// 职责：
// 1. 从 lmstfy 队列消费触发消息
// 2. 调用调度器同步执行对应任务
// 3. 确认消息（ACK）
type TriggerConsumer struct {
	source Source
	runner Runner
	cfg    Config
	logger logger.Logger
}

// NewTriggerConsumer 创建触发消费者实例
func NewTriggerConsumer(source Source, runner Runner, cfg Config, log logger.Logger) *TriggerConsumer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.TTR <= 0 {
		cfg.TTR = 10 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &TriggerConsumer{
		source: source,
		runner: runner,
		cfg:    cfg,
		logger: log,
	}
}

// Start 启动消费循环，ctx 取消后返回
func (c *TriggerConsumer) Start(ctx context.Context) error {
	c.logger.Infof(ctx, "trigger consumer started: queue=%s, timeout=%s, ttr=%s", c.cfg.QueueName, c.cfg.Timeout, c.cfg.TTR)

	for {
		select {
		case <-ctx.Done():
			c.logger.Infof(ctx, "trigger consumer stopped")
			return ctx.Err()
		default:
			if err := c.consumeOne(ctx); err != nil {
				c.logger.Errorf(ctx, "failed to consume trigger: %v", err)
				select {
				case <-ctx.Done():
				case <-time.After(c.cfg.PollInterval):
				}
			}
		}
	}
}

// consumeOne 消费一条消息
func (c *TriggerConsumer) consumeOne(ctx context.Context) error {
	// 1. 从队列拉取消息
	msg, err := c.source.Consume(c.cfg.QueueName, c.cfg.TTR, c.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("consume message failed: %w", err)
	}
	if msg == nil {
		return nil
	}

	// 2. 解析触发消息，解析失败直接 ACK（避免反复投递）
	trigger, err := parseTrigger(msg.Data)
	if err != nil {
		_ = c.source.Ack(c.cfg.QueueName, msg.ID)
		return fmt.Errorf("drop trigger %s: %w", msg.ID, err)
	}
	c.logger.Infof(ctx, "received trigger: job_id=%s, job=%s, requested_by=%s", msg.ID, trigger.Job, trigger.RequestedBy)

	// 3. 执行任务
	// 任务不存在、正在运行或被其他实例持有时不重试；执行失败不 ACK，依赖 TTR 重新投递
	err = c.runner.RunNow(ctx, trigger.Job)
	switch {
	case err == nil:
	case errors.Is(err, scheduler.ErrJobNotFound),
		errors.Is(err, scheduler.ErrJobRunning),
		errors.Is(err, scheduler.ErrLocked):
		c.logger.Warnf(ctx, "trigger %s not executed: %v", msg.ID, err)
	default:
		return fmt.Errorf("run job %s failed: %w", trigger.Job, err)
	}

	// 4. 确认消息
	if err := c.source.Ack(c.cfg.QueueName, msg.ID); err != nil {
		return fmt.Errorf("ack trigger %s failed: %w", msg.ID, err)
	}
	return nil
}
