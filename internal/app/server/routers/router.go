package routers

import (
	"github.com/gin-gonic/gin"

	"stratools/internal/app/pkg/logger"
	"stratools/internal/app/server/handlers/job"
	"stratools/internal/app/server/handlers/lookup"
	"stratools/internal/app/server/handlers/set"
	"stratools/internal/app/server/handlers/warning"
	"stratools/internal/app/server/middlewares"
)

// Options 路由依赖
type Options struct {
	Logger         logger.Logger
	SetHandler     *set.SetHandler
	LookupHandler  *lookup.LookupHandler
	WarningHandler *warning.WarningHandler
	JobHandler     *job.JobHandler
	// Authenticator 为 nil 时关闭认证
	Authenticator middlewares.Authenticator
	// RateLimiter 为 nil 时不限流
	RateLimiter *middlewares.RateLimiter
}

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(opts Options) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.Recovery(opts.Logger))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.AccessLog(opts.Logger))
	r.Use(middlewares.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "stratools",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	if opts.Authenticator != nil {
		v1.Use(middlewares.Auth(opts.Authenticator))
	}
	if opts.RateLimiter != nil {
		v1.Use(opts.RateLimiter.Middleware())
	}
	{
		sh := opts.SetHandler
		sets := v1.Group("/sets")
		{
			sets.POST("", sh.Create)
			sets.GET("", sh.List)
			sets.GET("/:name", sh.Get)
			sets.PUT("/:name", sh.Update)
			sets.DELETE("/:name", sh.Delete)

			sets.POST("/:name/values", sh.AddValue)
			sets.GET("/:name/values", sh.ListValues)
			sets.DELETE("/:name/values", sh.ClearValues)
			sets.GET("/:name/values/check", sh.CheckValue)
			sets.POST("/:name/values/bulk", sh.AddValuesBulk)
			sets.POST("/:name/values/check-bulk", sh.CheckValuesBulk)
			sets.POST("/:name/values/delete", sh.DeleteValues)
			sets.PUT("/:name/values/:valueId", sh.UpdateValue)
			sets.DELETE("/:name/values/:valueId", sh.RemoveValue)
		}

		lh := opts.LookupHandler
		lookups := v1.Group("/lookups")
		{
			lookups.POST("", lh.Create)
			lookups.GET("", lh.List)
			lookups.GET("/:name", lh.Get)
			lookups.PUT("/:name", lh.Update)
			lookups.DELETE("/:name", lh.Delete)

			lookups.POST("/:name/values", lh.AddValue)
			lookups.GET("/:name/values", lh.ListValues)
			lookups.DELETE("/:name/values", lh.ClearValues)
			lookups.GET("/:name/values/search", lh.SearchValues)
			lookups.POST("/:name/values/bulk", lh.AddValuesBulk)
			lookups.POST("/:name/values/delete", lh.DeleteValues)
			lookups.PUT("/:name/values/:valueId", lh.UpdateValue)
			lookups.DELETE("/:name/values/:valueId", lh.RemoveValue)
		}

		wh := opts.WarningHandler
		warnings := v1.Group("/warnings")
		{
			warnings.GET("", wh.List)
			warnings.GET("/stats", wh.Stats)
			warnings.GET("/:id", wh.Get)
			warnings.POST("/resolve-bulk", wh.ResolveBulk)
			warnings.POST("/:id/resolve", wh.Resolve)
			warnings.DELETE("/resolved", wh.ClearResolved)
			warnings.DELETE("/:id", wh.Delete)
		}

		if jh := opts.JobHandler; jh != nil {
			jobs := v1.Group("/jobs")
			if jh.Embedded() {
				jobs.GET("", jh.List)
			}
			jobs.POST("/:name/trigger", jh.Trigger)
		}
	}

	return r
}
