// Package bootstrap 组装 repo -> module -> service -> handler，供各进程入口复用
package bootstrap

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stratools/internal/app/config"
	"stratools/internal/app/domains/modules/mdapp"
	"stratools/internal/app/domains/modules/mdlookup"
	"stratools/internal/app/domains/modules/mdset"
	"stratools/internal/app/domains/modules/mdwarning"
	"stratools/internal/app/domains/repo/rpapp"
	"stratools/internal/app/domains/repo/rplookup"
	"stratools/internal/app/domains/repo/rpset"
	"stratools/internal/app/domains/repo/rpwarning"
	"stratools/internal/app/domains/services/svapp"
	"stratools/internal/app/domains/services/svdetect"
	"stratools/internal/app/domains/services/svlookup"
	"stratools/internal/app/domains/services/svset"
	"stratools/internal/app/domains/services/svwarning"
	"stratools/internal/app/pkg/logger"
	"stratools/internal/app/scheduler"
	"stratools/internal/app/server/handlers/job"
	"stratools/internal/app/server/handlers/lookup"
	"stratools/internal/app/server/handlers/set"
	"stratools/internal/app/server/handlers/warning"
	"stratools/internal/app/server/middlewares"
	"stratools/internal/app/server/routers"
)

// Services 业务服务集合
type Services struct {
	Set       *svset.SetService
	Lookup    *svlookup.LookupService
	Warning   *svwarning.WarningService
	App       *svapp.AppService
	Detection *svdetect.DetectionService
}

// NewServices 初始化 Repository、Module、Service 三层，notifier 可为 nil
func NewServices(db *gorm.DB, bulk config.BulkConfig, notifier svdetect.Notifier, log logger.Logger) *Services {
	// 1. Repository 层
	setRepo := rpset.NewSetRepository(db)
	lookupRepo := rplookup.NewLookupRepository(db)
	warningRepo := rpwarning.NewWarningRepository(db)
	appRepo := rpapp.NewAppRepository(db)

	// 2. Module 层
	setModule := mdset.NewSetModule(setRepo)
	lookupModule := mdlookup.NewLookupModule(lookupRepo)
	warningModule := mdwarning.NewWarningModule(warningRepo)
	appModule := mdapp.NewAppModule(appRepo)

	// 3. Service 层
	return &Services{
		Set:       svset.NewSetService(setModule, bulk, log),
		Lookup:    svlookup.NewLookupService(lookupModule, bulk, log),
		Warning:   svwarning.NewWarningService(warningModule, log),
		App:       svapp.NewAppService(appModule, log),
		Detection: svdetect.NewDetectionService(lookupModule, warningModule, notifier, log),
	}
}

// NewScheduler 创建调度器并注册已启用的任务，locker 为 nil 时只做进程内互斥
func NewScheduler(jobs config.JobsConfig, svcs *Services, locker scheduler.Locker, log logger.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(locker, log)

	dd := jobs.DuplicateDetection
	if dd.Enabled {
		if err := s.Register(svdetect.JobName, dd.Schedule, scheduler.JobFunc(svcs.Detection.Execute), scheduler.WithLockTTL(dd.LockTTL)); err != nil {
			return nil, fmt.Errorf("register %s failed: %w", svdetect.JobName, err)
		}
	}
	return s, nil
}

// JobNames 已启用的任务名
func JobNames(jobs config.JobsConfig) []string {
	names := make([]string, 0, 1)
	if jobs.DuplicateDetection.Enabled {
		names = append(names, svdetect.JobName)
	}
	return names
}

// NewEngine 初始化 Handler 并配置路由，jobHandler 可为 nil
func NewEngine(cfg *config.Config, svcs *Services, jobHandler *job.JobHandler, log logger.Logger) *gin.Engine {
	opts := routers.Options{
		Logger:         log,
		SetHandler:     set.NewSetHandler(svcs.Set),
		LookupHandler:  lookup.NewLookupHandler(svcs.Lookup),
		WarningHandler: warning.NewWarningHandler(svcs.Warning),
		JobHandler:     jobHandler,
	}
	if cfg.Auth.Enabled {
		opts.Authenticator = svcs.App
	}
	if cfg.Auth.RateLimitRPS > 0 {
		opts.RateLimiter = middlewares.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)
	}
	return routers.SetupRoutes(opts)
}
