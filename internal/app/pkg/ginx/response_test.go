package ginx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/pkg/errorx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{errorx.NotFound("set 'a' not found"), http.StatusNotFound, errorx.CodeNotFound},
		{errorx.DuplicateName("set", "a"), http.StatusConflict, errorx.CodeDuplicateName},
		{errorx.DuplicateValue("value exists"), http.StatusConflict, errorx.CodeDuplicateValue},
		{errorx.AlreadyResolved("w1"), http.StatusBadRequest, errorx.CodeAlreadyResolved},
		{errorx.Unauthorized("no key"), http.StatusUnauthorized, errorx.CodeUnauthorized},
		{errorx.Forbidden("read only"), http.StatusForbidden, errorx.CodeForbidden},
		{errorx.RateLimited(), http.StatusTooManyRequests, errorx.CodeRateLimited},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, errorx.CodeInternal},
	}
	for _, tc := range cases {
		w, resp := serve(t, func(c *gin.Context) { Error(c, tc.err) })
		assert.Equal(t, tc.status, w.Code, tc.code)
		assert.Equal(t, tc.code, resp.Meta.Code)
	}
}

func TestError_InternalHidesCause(t *testing.T) {
	_, resp := serve(t, func(c *gin.Context) { Error(c, errors.New("password=secret")) })
	assert.Equal(t, "internal error", resp.Meta.Message)
}

func TestError_Details(t *testing.T) {
	_, resp := serve(t, func(c *gin.Context) { Error(c, errorx.InvalidName("a b", "must match [A-Za-z0-9_-]+")) })
	require.Len(t, resp.Meta.Details, 1)
	assert.Equal(t, "name", resp.Meta.Details[0].Path)
}

func TestBadRequestWithValidation(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
	}
	w, resp := serve(t, func(c *gin.Context) {
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		c.Request.Header.Set("Content-Type", "application/json")
		var b body
		err := c.ShouldBindJSON(&b)
		require.Error(t, err)
		BadRequestWithValidation(c, err)
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errorx.CodeValidation, resp.Meta.Code)
	require.Len(t, resp.Meta.Details, 1)
	assert.Equal(t, "Name is required", resp.Meta.Details[0].Info)
}

func TestSuccess(t *testing.T) {
	w, resp := serve(t, func(c *gin.Context) { Success(c, gin.H{"ok": true}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", resp.Meta.Code)
}
