package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"stratools/internal/app/bootstrap"
	"stratools/internal/app/config"
	"stratools/internal/app/consumer"
	"stratools/internal/app/domains/services/svdetect"
	"stratools/internal/app/infra/mq/lmstfy"
	"stratools/internal/app/infra/persistence/mysql"
	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/logger"
	"stratools/internal/app/scheduler"
	"stratools/internal/app/server/handlers/job"
)

// App apiserver 进程持有的组件
type App struct {
	Engine *gin.Engine
	// Scheduler 仅在 server.embed_scheduler=true 时非空
	Scheduler *scheduler.Scheduler
}

// InitializeApp 按依赖顺序初始化组件，返回的 cleanup 释放全部连接
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	closers := make([]func(), 0, 3)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// 1. 日志
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	closers = append(closers, func() { _ = appLogger.Sync() })

	// 2. 数据库
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, func() { _ = mysql.Close(db) })
	if cfg.MySQL.AutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	// 3. Redis（可选）：任务锁 + 完成通知
	var (
		notifier svdetect.Notifier
		locker   scheduler.Locker
		pubsub   *redis.PubSub
	)
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		pubsub = redis.NewPubSub(redisClient)
		notifier = pubsub
		locker = scheduler.NewRedisLocker(redis.NewLocker(redisClient, "stratools:job:"))
	}

	svcs := bootstrap.NewServices(db, cfg.Bulk, notifier, appLogger)
	jobNames := bootstrap.JobNames(cfg.Jobs)

	// 4. 任务触发：内嵌调度器直接执行，否则投递到 lmstfy 由 worker 执行
	app := &App{}
	var jobHandler *job.JobHandler
	switch {
	case cfg.Server.EmbedScheduler:
		sched, err := bootstrap.NewScheduler(cfg.Jobs, svcs, locker, appLogger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		app.Scheduler = sched
		jobHandler = job.NewJobHandler(sched, nil, jobNames)
	case cfg.Lmstfy.TriggerQueue != "":
		publisher := consumer.NewTriggerPublisher(lmstfy.NewClient(cfg.Lmstfy), cfg.Lmstfy.TriggerQueue)
		jobHandler = job.NewJobHandler(nil, publisher, jobNames)
	}

	// wait=true 的等待时间不超过写超时
	if jobHandler != nil && pubsub != nil {
		waitTimeout := job.DefaultWaitTimeout
		if wt := cfg.Server.WriteTimeout - 5*time.Second; wt > 0 && wt < waitTimeout {
			waitTimeout = wt
		}
		jobHandler.WithWaiter(pubsub, waitTimeout)
	}

	app.Engine = bootstrap.NewEngine(cfg, svcs, jobHandler, appLogger)
	return app, cleanup, nil
}
