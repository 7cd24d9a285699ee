package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"

	"stratools/internal/app/pkg/logger"
)

// 错误定义
var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobExists   = errors.New("job already registered")
	ErrJobRunning  = errors.New("job is already running")
	ErrLocked      = errors.New("job is running on another instance")
	ErrStopped     = errors.New("scheduler is stopped")
)

const defaultLockTTL = 10 * time.Minute

// 秒字段可选，兼容 5 段和 6 段表达式
var cronSpecParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job 定时任务
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc 函数适配为 Job
type JobFunc func(ctx context.Context) error

// Run 实现 Job
func (f JobFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Releaser 已持有的锁
type Releaser interface {
	// Refresh 续期，锁已丢失时返回错误
	Refresh(ctx context.Context, ttl time.Duration) error
	Release(ctx context.Context) error
}

// Locker 跨进程互斥，被占用时返回 ok=false
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (Releaser, bool, error)
}

// Option 注册选项
type Option func(*entry)

// WithLockTTL 设置分布式锁过期时间，运行期间每 ttl/3 续期一次
func WithLockTTL(ttl time.Duration) Option {
	return func(e *entry) {
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// JobStatus 任务状态快照
type JobStatus struct {
	Name           string     `json:"name"`
	Schedule       string     `json:"schedule"`
	Running        bool       `json:"running"`
	Runs           int64      `json:"runs"`
	Skipped        int64      `json:"skipped"`
	LastRunAt      *time.Time `json:"lastRunAt,omitempty"`
	LastDurationMs int64      `json:"lastDurationMs"`
	LastError      string     `json:"lastError,omitempty"`
	NextRunAt      *time.Time `json:"nextRunAt,omitempty"`
}

type entry struct {
	name    string
	spec    string
	job     Job
	lockTTL time.Duration
	id      cron.EntryID
	running *atomic.Bool

	mu           sync.Mutex
	runs         int64
	skipped      int64
	lastRunAt    *time.Time
	lastDuration time.Duration
	lastError    string
}

// Scheduler 任务注册表：进程启动时创建一次，按引用传递
type Scheduler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cron    *cron.Cron
	locker  Locker
	logger  logger.Logger
	started *atomic.Bool
	closing *atomic.Bool
	// lifeMu 保证 closing 置位之后不再有 wg.Add
	lifeMu sync.Mutex
	wg     sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*entry
}

// New 创建调度器，locker 为 nil 时只做进程内互斥
func New(locker Locker, log logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := &cronLogger{logger: log}
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		cron: cron.New(
			cron.WithParser(cronSpecParser),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLogger(cl),
		),
		locker:  locker,
		logger:  log,
		started: atomic.NewBool(false),
		closing: atomic.NewBool(false),
		jobs:    make(map[string]*entry),
	}
}

// Register 注册任务，spec 支持标准 cron 表达式和 @every 等描述符
func (s *Scheduler) Register(name, spec string, job Job, opts ...Option) error {
	if s.closing.Load() {
		return ErrStopped
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}

	e := &entry{
		name:    name,
		spec:    spec,
		job:     job,
		lockTTL: defaultLockTTL,
		running: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(e)
	}

	id, err := s.cron.AddFunc(spec, func() {
		_ = s.execute(s.ctx, e)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	e.id = id
	s.jobs[name] = e

	s.logger.Infof(s.ctx, "[Scheduler] job registered: name=%s, schedule=%s", name, spec)
	return nil
}

// Start 启动定时触发（非阻塞）
func (s *Scheduler) Start() {
	if s.closing.Load() || !s.started.CAS(false, true) {
		return
	}
	s.cron.Start()
	s.logger.Infof(s.ctx, "[Scheduler] started, jobs=%d", len(s.Status()))
}

// Stop 停止调度并等待运行中的任务退出，运行中的任务会收到 ctx 取消
func (s *Scheduler) Stop(ctx context.Context) error {
	s.lifeMu.Lock()
	closed := s.closing.CAS(false, true)
	s.lifeMu.Unlock()
	if !closed {
		return nil
	}
	s.logger.Infof(s.ctx, "[Scheduler] began to close")

	// 1. 停止触发新任务
	cronDone := s.cron.Stop()

	// 2. 通知运行中的任务退出
	s.cancel()

	// 3. 等待定时任务和手动触发的任务结束
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof(s.ctx, "[Scheduler] shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunNow 同步执行一次任务，Stop 会等待其结束
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	if !s.track() {
		return ErrStopped
	}
	defer s.wg.Done()

	e, err := s.get(name)
	if err != nil {
		return err
	}
	return s.execute(ctx, e)
}

// Trigger 异步执行一次任务，任务已在运行时立即返回 ErrJobRunning
func (s *Scheduler) Trigger(name string) error {
	e, err := s.get(name)
	if err != nil {
		return err
	}
	if !s.track() {
		return ErrStopped
	}
	if !e.running.CAS(false, true) {
		s.wg.Done()
		e.markSkipped()
		return ErrJobRunning
	}

	go func() {
		defer s.wg.Done()
		defer e.running.Store(false)
		_ = s.runLocked(s.ctx, e)
	}()
	return nil
}

// Status 按名称排序返回全部任务状态
func (s *Scheduler) Status() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, e := range s.jobs {
		st := e.snapshot()
		if s.started.Load() {
			if next := s.cron.Entry(e.id).Next; !next.IsZero() {
				st.NextRunAt = &next
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// track 登记一次执行，已关闭时返回 false
func (s *Scheduler) track() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closing.Load() {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) get(name string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return e, nil
}

// execute 进程内同一任务不重叠执行
func (s *Scheduler) execute(ctx context.Context, e *entry) error {
	if !e.running.CAS(false, true) {
		e.markSkipped()
		s.logger.Infof(ctx, "[Scheduler] job %s skipped: still running", e.name)
		return ErrJobRunning
	}
	defer e.running.Store(false)
	return s.runLocked(ctx, e)
}

// runLocked 获取分布式锁后执行
func (s *Scheduler) runLocked(ctx context.Context, e *entry) error {
	ctx = logger.WithJob(ctx, e.name)

	if s.locker != nil {
		lock, ok, err := s.locker.TryLock(ctx, e.name, e.lockTTL)
		if err != nil {
			e.finish(time.Now(), 0, err)
			s.logger.Errorf(ctx, "[Scheduler] job %s lock failed: %v", e.name, err)
			return err
		}
		if !ok {
			e.markSkipped()
			s.logger.Infof(ctx, "[Scheduler] job %s skipped: lock held by another instance", e.name)
			return ErrLocked
		}
		// 锁丢失时取消任务，避免与其他实例同时执行
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		stopHeartbeat := s.heartbeat(ctx, cancel, e, lock)
		defer func() {
			stopHeartbeat()
			cancel()
			// 任务 ctx 可能已取消，释放锁使用独立 ctx
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer releaseCancel()
			if err := lock.Release(releaseCtx); err != nil {
				s.logger.Warnf(ctx, "[Scheduler] job %s release lock failed: %v", e.name, err)
			}
		}()
	}

	start := time.Now()
	err := runSafely(ctx, e.job)
	e.finish(start, time.Since(start), err)

	if err != nil {
		s.logger.Errorf(ctx, "[Scheduler] job %s failed after %s: %v", e.name, time.Since(start), err)
		return err
	}
	s.logger.Infof(ctx, "[Scheduler] job %s finished in %s", e.name, time.Since(start))
	return nil
}

// heartbeat 每 lockTTL/3 续期一次，续期失败即取消任务；返回的函数等待续期协程退出
func (s *Scheduler) heartbeat(ctx context.Context, cancel context.CancelFunc, e *entry, lock Releaser) func() {
	done := make(chan struct{})
	exited := make(chan struct{})
	interval := e.lockTTL / 3
	if interval <= 0 {
		interval = time.Millisecond
	}

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lock.Refresh(ctx, e.lockTTL); err != nil {
					s.logger.Errorf(ctx, "[Scheduler] job %s lost lock, cancelling: %v", e.name, err)
					cancel()
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

func runSafely(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
		}
	}()
	return job.Run(ctx)
}

func (e *entry) finish(at time.Time, d time.Duration, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs++
	e.lastRunAt = &at
	e.lastDuration = d
	e.lastError = ""
	if err != nil {
		e.lastError = err.Error()
	}
}

func (e *entry) markSkipped() {
	e.mu.Lock()
	e.skipped++
	e.mu.Unlock()
}

func (e *entry) snapshot() JobStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return JobStatus{
		Name:           e.name,
		Schedule:       e.spec,
		Running:        e.running.Load(),
		Runs:           e.runs,
		Skipped:        e.skipped,
		LastRunAt:      e.lastRunAt,
		LastDurationMs: e.lastDuration.Milliseconds(),
		LastError:      e.lastError,
	}
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	logger logger.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf(context.Background(), "[cron] %s %v", msg, keysAndValues)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorf(context.Background(), "[cron] %s: %v %v", msg, err, keysAndValues)
}
