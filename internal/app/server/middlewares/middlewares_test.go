package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/ginx"
	"stratools/internal/app/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	apps map[string]*etapp.App
}

func (f *fakeAuth) Authenticate(_ context.Context, key string) (*etapp.App, error) {
	if app, ok := f.apps[key]; ok {
		return app, nil
	}
	return nil, errorx.Unauthorized("invalid api key")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger.NewNop()), RequestID())
	r.Use(handlers...)
	ok := func(c *gin.Context) { ginx.Success(c, gin.H{"app": CurrentApp(c) != nil}) }
	r.GET("/x", ok)
	r.POST("/x", ok)
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path, key string) (*httptest.ResponseRecorder, ginx.Response) {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(HeaderAPIKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp ginx.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestAuth_Permissions(t *testing.T) {
	auth := &fakeAuth{apps: map[string]*etapp.App{
		"reader": {ID: "1", Name: "reader", Permission: etapp.PermissionRead},
		"writer": {ID: "2", Name: "writer", Permission: etapp.PermissionWrite},
		"none":   {ID: "3", Name: "none", Permission: etapp.PermissionNone},
	}}
	r := newEngine(Auth(auth))

	cases := []struct {
		method, key string
		status      int
	}{
		{http.MethodGet, "", http.StatusUnauthorized},
		{http.MethodGet, "bogus", http.StatusUnauthorized},
		{http.MethodGet, "reader", http.StatusOK},
		{http.MethodPost, "reader", http.StatusForbidden},
		{http.MethodGet, "writer", http.StatusOK},
		{http.MethodPost, "writer", http.StatusOK},
		{http.MethodGet, "none", http.StatusForbidden},
	}
	for _, tc := range cases {
		w, _ := do(r, tc.method, "/x", tc.key)
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.key)
	}
}

func TestRateLimiter_PerApp(t *testing.T) {
	auth := &fakeAuth{apps: map[string]*etapp.App{
		"a": {ID: "a", Name: "a", Permission: etapp.PermissionRead},
		"b": {ID: "b", Name: "b", Permission: etapp.PermissionRead},
	}}
	r := newEngine(Auth(auth), NewRateLimiter(0.001, 2).Middleware())

	for i := 0; i < 2; i++ {
		w, _ := do(r, http.MethodGet, "/x", "a")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, resp := do(r, http.MethodGet, "/x", "a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, errorx.CodeRateLimited, resp.Meta.Code)

	// 其他 App 不受影响
	w, _ = do(r, http.MethodGet, "/x", "b")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	w, resp := do(newEngine(), http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errorx.CodeInternal, resp.Meta.Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine()
	w, _ := do(r, http.MethodGet, "/x", "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
}

func TestCORS_Preflight(t *testing.T) {
	w, _ := do(newEngine(CORS()), http.MethodOptions, "/x", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
