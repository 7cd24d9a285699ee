package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/ginx"
	"stratools/internal/app/pkg/logger"
)

// HeaderAPIKey API Key 请求头
const HeaderAPIKey = "api-key"

const appContextKey = "stratools.app"

// Authenticator 根据 API Key 解析调用方
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*etapp.App, error)
}

// Auth API Key 认证：GET 需要 READ 或 WRITE，其他方法需要 WRITE
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		app, err := auth.Authenticate(c.Request.Context(), c.GetHeader(HeaderAPIKey))
		if err != nil {
			ginx.Error(c, err)
			return
		}

		allowed := app.CanWrite()
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			allowed = app.CanRead()
		}
		if !allowed {
			ginx.Error(c, errorx.Forbidden("app '"+app.Name+"' is not permitted to "+c.Request.Method+" this resource"))
			return
		}

		c.Set(appContextKey, app)
		c.Request = c.Request.WithContext(logger.WithAppID(c.Request.Context(), app.ID))
		c.Next()
	}
}

// CurrentApp 返回已认证的调用方，未启用认证时为 nil
func CurrentApp(c *gin.Context) *etapp.App {
	if v, ok := c.Get(appContextKey); ok {
		if app, ok := v.(*etapp.App); ok {
			return app
		}
	}
	return nil
}
