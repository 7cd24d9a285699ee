package ginx

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/pkg/errorx"
)

func ctxWithQuery(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPage(t *testing.T) {
	limit, offset, err := Page(ctxWithQuery("limit=20&offset=40"))
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 40, offset)

	limit, offset, err = Page(ctxWithQuery(""))
	require.NoError(t, err)
	assert.Zero(t, limit)
	assert.Zero(t, offset)

	_, _, err = Page(ctxWithQuery("limit=abc"))
	assert.True(t, errorx.IsCode(err, errorx.CodeValidation))
}

func TestQueryBool(t *testing.T) {
	b, err := QueryBool(ctxWithQuery("resolved=true"), "resolved")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	b, err = QueryBool(ctxWithQuery(""), "resolved")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = QueryBool(ctxWithQuery("resolved=maybe"), "resolved")
	assert.Error(t, err)
}

func TestQueryString(t *testing.T) {
	assert.Nil(t, QueryString(ctxWithQuery(""), "left"))
	assert.Nil(t, QueryString(ctxWithQuery("left="), "left"))
	v := QueryString(ctxWithQuery("left=crm-1"), "left")
	require.NotNil(t, v)
	assert.Equal(t, "crm-1", *v)
}
