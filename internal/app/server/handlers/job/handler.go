package job

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/ginx"
	"stratools/internal/app/scheduler"
	"stratools/internal/app/server/middlewares"
)

// DefaultWaitTimeout wait=true 时等待完成通知的最长时间
const DefaultWaitTimeout = 30 * time.Second

// Scheduler 进程内调度器
type Scheduler interface {
	Status() []scheduler.JobStatus
	Trigger(name string) error
}

// TriggerPublisher 投递触发消息到 worker
type TriggerPublisher interface {
	PublishTrigger(job, requestedBy string) (string, error)
}

// RefreshWaiter 订阅检测完成通知
type RefreshWaiter interface {
	SubscribeWarningsRefreshed(ctx context.Context) (*redis.RefreshSubscription, error)
}

// JobHandler 定时任务 HTTP 处理器
// 调度器内嵌时直接触发；否则通过队列交给 worker 执行
type JobHandler struct {
	scheduler   Scheduler
	publisher   TriggerPublisher
	waiter      RefreshWaiter
	waitTimeout time.Duration
	jobs        []string
}

// NewJobHandler 创建任务处理器实例，scheduler 与 publisher 至少提供一个
func NewJobHandler(s Scheduler, publisher TriggerPublisher, jobs []string) *JobHandler {
	return &JobHandler{
		scheduler:   s,
		publisher:   publisher,
		waitTimeout: DefaultWaitTimeout,
		jobs:        jobs,
	}
}

// WithWaiter 开启 wait=true 支持
func (h *JobHandler) WithWaiter(w RefreshWaiter, timeout time.Duration) *JobHandler {
	h.waiter = w
	if timeout > 0 {
		h.waitTimeout = timeout
	}
	return h
}

// Embedded 调度器是否运行在当前进程
func (h *JobHandler) Embedded() bool {
	return h.scheduler != nil
}

// List 任务状态
// GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	ginx.Success(c, h.scheduler.Status())
}

// Trigger 手动触发任务
// POST /api/v1/jobs/:name/trigger?wait=true
func (h *JobHandler) Trigger(c *gin.Context) {
	name := c.Param("name")

	wait, err := ginx.QueryBool(c, "wait")
	if err != nil {
		ginx.Error(c, err)
		return
	}

	// 1. 先订阅再触发，避免错过完成通知
	var sub *redis.RefreshSubscription
	if wait != nil && *wait && h.waiter != nil {
		sub, err = h.waiter.SubscribeWarningsRefreshed(c.Request.Context())
		if err != nil {
			ginx.Error(c, err)
			return
		}
		defer sub.Close()
	}

	// 2. 触发
	resp, err := h.trigger(c, name)
	if err != nil {
		ginx.Error(c, err)
		return
	}

	// 3. 等待完成通知，超时只返回触发结果
	if sub != nil {
		n, err := sub.Wait(c.Request.Context(), h.waitTimeout)
		if err == nil {
			resp.Completed = true
			resp.Warnings = &n.Warnings
			resp.FinishedAt = &n.FinishedAt
		} else if !errors.Is(err, context.DeadlineExceeded) {
			ginx.Error(c, err)
			return
		}
	}
	ginx.Success(c, resp)
}

func (h *JobHandler) trigger(c *gin.Context, name string) (*response.TriggerResponse, error) {
	if h.scheduler != nil {
		err := h.scheduler.Trigger(name)
		switch {
		case err == nil:
			return &response.TriggerResponse{Job: name}, nil
		case errors.Is(err, scheduler.ErrJobNotFound):
			return nil, errorx.NotFound("job '%s' not found", name)
		case errors.Is(err, scheduler.ErrJobRunning):
			return nil, errorx.JobRunning(name)
		default:
			return nil, err
		}
	}

	if !slices.Contains(h.jobs, name) {
		return nil, errorx.NotFound("job '%s' not found", name)
	}
	if h.publisher == nil {
		return nil, errors.New("no job trigger queue configured")
	}

	requestedBy := ""
	if app := middlewares.CurrentApp(c); app != nil {
		requestedBy = app.Name
	}
	jobID, err := h.publisher.PublishTrigger(name, requestedBy)
	if err != nil {
		return nil, err
	}
	return &response.TriggerResponse{Job: name, Queued: true, JobID: jobID}, nil
}
