package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/domains/apimodel/response"
	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/ginx"
	"stratools/internal/app/scheduler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeScheduler struct {
	triggerErr error
	triggered  []string
}

func (f *fakeScheduler) Status() []scheduler.JobStatus {
	return []scheduler.JobStatus{{Name: "duplicate_detection", Schedule: "@every 5m"}}
}

func (f *fakeScheduler) Trigger(name string) error {
	f.triggered = append(f.triggered, name)
	return f.triggerErr
}

type fakePublisher struct {
	jobs      []string
	err       error
	onPublish func(job string)
}

func (f *fakePublisher) PublishTrigger(job, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, job)
	if f.onPublish != nil {
		f.onPublish(job)
	}
	return "lmstfy-1", nil
}

func serve(h *JobHandler, method, path string) (*httptest.ResponseRecorder, ginx.Response) {
	r := gin.New()
	if h.Embedded() {
		r.GET("/jobs", h.List)
	}
	r.POST("/jobs/:name/trigger", h.Trigger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var resp ginx.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestTrigger_Embedded(t *testing.T) {
	s := &fakeScheduler{}
	h := NewJobHandler(s, nil, nil)

	w, _ := serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"duplicate_detection"}, s.triggered)

	s.triggerErr = scheduler.ErrJobRunning
	w, resp := serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errorx.CodeJobRunning, resp.Meta.Code)

	s.triggerErr = scheduler.ErrJobNotFound
	w, _ = serve(h, http.MethodPost, "/jobs/nope/trigger")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrigger_Queued(t *testing.T) {
	p := &fakePublisher{}
	h := NewJobHandler(nil, p, []string{"duplicate_detection"})

	w, resp := serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"duplicate_detection"}, p.jobs)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out response.TriggerResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Queued)
	assert.Equal(t, "lmstfy-1", out.JobID)

	w, _ = serve(h, http.MethodPost, "/jobs/unknown/trigger")
	assert.Equal(t, http.StatusNotFound, w.Code)

	p.err = errors.New("lmstfy unavailable")
	w, _ = serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestList_OnlyWhenEmbedded(t *testing.T) {
	w, _ := serve(NewJobHandler(&fakeScheduler{}, nil, nil), http.MethodGet, "/jobs")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = serve(NewJobHandler(nil, &fakePublisher{}, []string{"duplicate_detection"}), http.MethodGet, "/jobs")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func decodeTrigger(t *testing.T, resp ginx.Response) response.TriggerResponse {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out response.TriggerResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func newPubSub(t *testing.T) *redis.PubSub {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewPubSub(client)
}

func TestTrigger_WaitForCompletion(t *testing.T) {
	ps := newPubSub(t)
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &fakePublisher{onPublish: func(job string) {
		// worker 执行完成后发布通知
		_ = ps.PublishWarningsRefreshed(context.Background(), &redis.WarningsRefreshed{Job: job, Warnings: 4, FinishedAt: finished})
	}}
	h := NewJobHandler(nil, p, []string{"duplicate_detection"}).WithWaiter(ps, 5*time.Second)

	w, resp := serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger?wait=true")
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeTrigger(t, resp)
	assert.True(t, out.Queued)
	assert.True(t, out.Completed)
	require.NotNil(t, out.Warnings)
	assert.Equal(t, 4, *out.Warnings)
	require.NotNil(t, out.FinishedAt)
	assert.True(t, finished.Equal(*out.FinishedAt))
}

func TestTrigger_WaitTimeout(t *testing.T) {
	h := NewJobHandler(nil, &fakePublisher{}, []string{"duplicate_detection"}).WithWaiter(newPubSub(t), 50*time.Millisecond)

	w, resp := serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger?wait=true")
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeTrigger(t, resp)
	assert.True(t, out.Queued)
	assert.False(t, out.Completed)
	assert.Nil(t, out.Warnings)

	w, _ = serve(h, http.MethodPost, "/jobs/duplicate_detection/trigger?wait=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
