package middlewares

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/ginx"
)

// RateLimiter 按调用方维护令牌桶
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter 创建限流器
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Allow 消耗一个令牌
func (l *RateLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Middleware 以 App ID 为限流维度，未认证时使用客户端 IP
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if app := CurrentApp(c); app != nil {
			key = "app:" + app.ID
		}
		if !l.Allow(key) {
			ginx.Error(c, errorx.RateLimited())
			return
		}
		c.Next()
	}
}
