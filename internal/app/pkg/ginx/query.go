package ginx

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"stratools/internal/app/pkg/errorx"
)

// QueryInt 读取整数查询参数，缺省时返回 def
func QueryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errorx.Validation(key+" must be an integer", errorx.ErrorDetail{Path: key, Info: key + " must be an integer"})
	}
	return n, nil
}

// QueryString 读取可选的字符串查询参数，未出现或为空时返回 nil
func QueryString(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// QueryBool 读取可选的布尔查询参数
func QueryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errorx.Validation(key+" must be a boolean", errorx.ErrorDetail{Path: key, Info: key + " must be true or false"})
	}
	return &b, nil
}

// Page 读取 limit/offset，0 表示使用默认值
func Page(c *gin.Context) (limit, offset int, err error) {
	if limit, err = QueryInt(c, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = QueryInt(c, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
