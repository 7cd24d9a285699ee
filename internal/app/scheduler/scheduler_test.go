package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/logger"
)

// countingJob 记录执行次数，release 非空时阻塞到关闭或 ctx 取消
type countingJob struct {
	runs    atomic.Int64
	started chan struct{}
	release chan struct{}
	err     error
}

func newCountingJob() *countingJob {
	return &countingJob{started: make(chan struct{}, 16)}
}

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Inc()
	j.started <- struct{}{}
	if j.release != nil {
		select {
		case <-j.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

type fakeLock struct{ l *fakeLocker }

func (f fakeLock) Refresh(context.Context, time.Duration) error {
	f.l.refreshes.Inc()
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	return f.l.refreshErr
}

func (f fakeLock) Release(context.Context) error {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	f.l.held = false
	return nil
}

type fakeLocker struct {
	mu         sync.Mutex
	held       bool
	ttls       []time.Duration
	refreshErr error
	refreshes  atomic.Int64
}

func (f *fakeLocker) TryLock(_ context.Context, _ string, ttl time.Duration) (Releaser, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls = append(f.ttls, ttl)
	if f.held {
		return nil, false, nil
	}
	f.held = true
	return fakeLock{f}, true, nil
}

func TestRegister(t *testing.T) {
	s := New(nil, logger.NewNop())
	job := newCountingJob()

	require.NoError(t, s.Register("a", "@every 5m", job))
	assert.ErrorIs(t, s.Register("a", "@every 5m", job), ErrJobExists)
	assert.Error(t, s.Register("b", "not a cron", job))
	require.NoError(t, s.Register("c", "*/10 * * * *", job))

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "a", status[0].Name)
	assert.Equal(t, "@every 5m", status[0].Schedule)
	assert.Nil(t, status[0].NextRunAt)
}

func TestRunNow(t *testing.T) {
	ctx := context.Background()
	s := New(nil, logger.NewNop())
	job := newCountingJob()
	require.NoError(t, s.Register("detect", "@every 5m", job))

	require.NoError(t, s.RunNow(ctx, "detect"))
	assert.Equal(t, int64(1), job.runs.Load())

	job.err = errors.New("boom")
	assert.EqualError(t, s.RunNow(ctx, "detect"), "boom")

	st := s.Status()[0]
	assert.Equal(t, int64(2), st.Runs)
	assert.Equal(t, "boom", st.LastError)
	require.NotNil(t, st.LastRunAt)
	assert.False(t, st.Running)

	assert.ErrorIs(t, s.RunNow(ctx, "missing"), ErrJobNotFound)
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s := New(nil, logger.NewNop())
	require.NoError(t, s.Register("panicky", "@every 5m", JobFunc(func(context.Context) error {
		panic("nil map")
	})))

	err := s.RunNow(context.Background(), "panicky")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
	assert.False(t, s.Status()[0].Running)
}

func TestNoOverlap(t *testing.T) {
	ctx := context.Background()
	s := New(nil, logger.NewNop())
	job := newCountingJob()
	job.release = make(chan struct{})
	require.NoError(t, s.Register("detect", "@every 5m", job))

	require.NoError(t, s.Trigger("detect"))
	<-job.started

	assert.ErrorIs(t, s.Trigger("detect"), ErrJobRunning)
	assert.ErrorIs(t, s.RunNow(ctx, "detect"), ErrJobRunning)
	assert.True(t, s.Status()[0].Running)

	close(job.release)
	require.Eventually(t, func() bool { return !s.Status()[0].Running }, time.Second, 5*time.Millisecond)

	st := s.Status()[0]
	assert.Equal(t, int64(1), st.Runs)
	assert.Equal(t, int64(2), st.Skipped)
	assert.Equal(t, int64(1), job.runs.Load())
}

func TestLockHeldSkipsRun(t *testing.T) {
	ctx := context.Background()
	locker := &fakeLocker{held: true}
	s := New(locker, logger.NewNop())
	job := newCountingJob()
	require.NoError(t, s.Register("detect", "@every 5m", job, WithLockTTL(time.Minute)))

	assert.ErrorIs(t, s.RunNow(ctx, "detect"), ErrLocked)
	assert.Zero(t, job.runs.Load())
	assert.Equal(t, []time.Duration{time.Minute}, locker.ttls)

	locker.held = false
	require.NoError(t, s.RunNow(ctx, "detect"))
	assert.Equal(t, int64(1), job.runs.Load())
	assert.False(t, locker.held, "lock released after run")
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(redis.NewLocker(client, "stratools:job:"))
	s := New(locker, logger.NewNop())
	require.NoError(t, s.Register("detect", "@every 5m", JobFunc(func(context.Context) error {
		// 运行期间锁存在
		if !mr.Exists("stratools:job:detect") {
			return errors.New("lock missing")
		}
		return nil
	})))

	require.NoError(t, s.RunNow(ctx, "detect"))
	assert.False(t, mr.Exists("stratools:job:detect"))

	require.NoError(t, mr.Set("stratools:job:detect", "other-instance"))
	assert.ErrorIs(t, s.RunNow(ctx, "detect"), ErrLocked)
}

func TestStartRunsOnSchedule(t *testing.T) {
	s := New(nil, logger.NewNop())
	job := newCountingJob()
	require.NoError(t, s.Register("tick", "@every 1s", job))
	s.Start()

	select {
	case <-job.started:
	case <-time.After(3 * time.Second):
		t.Fatal("job was not scheduled")
	}
	assert.NotNil(t, s.Status()[0].NextRunAt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := New(nil, logger.NewNop())
	job := newCountingJob()
	job.release = make(chan struct{})
	require.NoError(t, s.Register("detect", "@every 5m", job))
	s.Start()

	require.NoError(t, s.Trigger("detect"))
	<-job.started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	st := s.Status()[0]
	assert.False(t, st.Running)
	assert.Contains(t, st.LastError, "context canceled")

	assert.ErrorIs(t, s.RunNow(context.Background(), "detect"), ErrStopped)
	assert.ErrorIs(t, s.Register("other", "@every 5m", job), ErrStopped)
}

func TestLockRefreshedWhileRunning(t *testing.T) {
	locker := &fakeLocker{}
	s := New(locker, logger.NewNop())
	job := newCountingJob()
	job.release = make(chan struct{})
	require.NoError(t, s.Register("detect", "@every 5m", job, WithLockTTL(30*time.Millisecond)))

	require.NoError(t, s.Trigger("detect"))
	<-job.started
	require.Eventually(t, func() bool { return locker.refreshes.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	close(job.release)
	require.Eventually(t, func() bool { return !s.Status()[0].Running }, time.Second, 5*time.Millisecond)
	assert.Empty(t, s.Status()[0].LastError)

	// 任务结束后不再续期
	n := locker.refreshes.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, locker.refreshes.Load())
}

func TestLockLostCancelsJob(t *testing.T) {
	locker := &fakeLocker{refreshErr: redis.ErrLockNotHeld}
	s := New(locker, logger.NewNop())
	job := newCountingJob()
	job.release = make(chan struct{})
	require.NoError(t, s.Register("detect", "@every 5m", job, WithLockTTL(30*time.Millisecond)))

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background(), "detect") }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("job kept running after losing the lock")
	}
	assert.Equal(t, int64(1), locker.refreshes.Load())
	assert.False(t, locker.held, "lock released after run")
}

func TestTriggerConcurrentWithStop(t *testing.T) {
	s := New(nil, logger.NewNop())
	require.NoError(t, s.Register("detect", "@every 5m", JobFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Trigger("detect")
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	wg.Wait()

	// Stop 返回后不会再有任务启动
	assert.False(t, s.Status()[0].Running)
	assert.ErrorIs(t, s.Trigger("detect"), ErrStopped)
}
