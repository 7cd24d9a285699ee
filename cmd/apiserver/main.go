package main

// @title           Stratools API
// @version         1.0
// @description     去重集合（Set）与双向映射表（Lookup）服务，附带 Lookup 重复检测告警

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name api-key

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stratools/internal/app/config"
)

var (
	configPath = flag.String("config", config.DefaultPath, "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. 初始化应用（HTTP Engine + 可选的内嵌调度器）
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	// 3. 创建 HTTP Server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. 启动内嵌调度器
	if app.Scheduler != nil {
		app.Scheduler.Start()
	}

	// 5. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server, app)
	case err := <-serverErrChan:
		log.Printf("HTTP server error: %v", err)
		gracefulShutdown(server, app)
	}

	log.Println("Application stopped")
}

// gracefulShutdown 优雅停机
func gracefulShutdown(server *http.Server, app *App) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. 停止 HTTP Server
	log.Println("Stopping HTTP server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	// 2. 停止调度器，等待运行中的任务退出
	if app.Scheduler != nil {
		log.Println("Stopping scheduler...")
		if err := app.Scheduler.Stop(ctx); err != nil {
			log.Printf("Scheduler shutdown error: %v", err)
		}
	}

	log.Println("All services stopped gracefully")
}
