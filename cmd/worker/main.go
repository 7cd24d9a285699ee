package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stratools/internal/app/bootstrap"
	"stratools/internal/app/config"
	"stratools/internal/app/consumer"
	"stratools/internal/app/infra/mq/lmstfy"
	"stratools/internal/app/infra/persistence/mysql"
	"stratools/internal/app/infra/persistence/redis"
	"stratools/internal/app/pkg/logger"
	"stratools/internal/app/scheduler"
)

var (
	configPath = flag.String("config", config.DefaultPath, "配置文件路径")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  Stratools Worker Starting...")
	log.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化基础设施组件
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer mysql.Close(db)
	if cfg.MySQL.AutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	defer redisClient.Close()

	// 4. 初始化 Service 层与调度器
	svcs := bootstrap.NewServices(db, cfg.Bulk, redis.NewPubSub(redisClient), zapLogger)
	locker := scheduler.NewRedisLocker(redis.NewLocker(redisClient, "stratools:job:"))
	sched, err := bootstrap.NewScheduler(cfg.Jobs, svcs, locker, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()

	// 5. 启动触发消费者（可选）
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	consumerErrChan := make(chan error, 1)
	if cfg.Lmstfy.TriggerQueue != "" {
		triggerConsumer := consumer.NewTriggerConsumer(
			lmstfy.NewClient(cfg.Lmstfy),
			sched,
			consumer.Config{
				QueueName: cfg.Lmstfy.TriggerQueue,
				Timeout:   3 * time.Second, // 拉取消息超时 3 秒
				TTR:       cfg.Jobs.DuplicateDetection.LockTTL,
			},
			zapLogger,
		)
		go func() {
			consumerErrChan <- triggerConsumer.Start(consumerCtx)
		}()
	}

	log.Println("Worker started. Press Ctrl+C to shutdown.")

	// 6. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v, shutting down worker...", sig)
	case err := <-consumerErrChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Consumer error: %v", err)
		}
	}

	// 7. 优雅关闭：先停消费者，再等待运行中的任务
	cancelConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	log.Println("Worker exited gracefully")
}
