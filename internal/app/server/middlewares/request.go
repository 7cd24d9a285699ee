package middlewares

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/ginx"
	"stratools/internal/app/pkg/logger"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestID 注入请求 ID（沿用调用方传入的值），写入 context 供日志使用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// AccessLog 访问日志
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		latency := time.Since(start)
		status := c.Writer.Status()
		if len(c.Errors) > 0 {
			log.Errorf(ctx, "%s %s %d %s: %s", c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.String())
			return
		}
		log.Infof(ctx, "%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
	}
}

// Recovery 捕获 panic，返回统一的 500 响应
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "panic recovered: %v\n%s", r, debug.Stack())
				ginx.Abort(c, http.StatusInternalServerError, errorx.CodeInternal, "internal error", nil)
			}
		}()
		c.Next()
	}
}

// CORS 跨域
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, api-key, "+HeaderRequestID)
		c.Header("Access-Control-Expose-Headers", HeaderRequestID)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
