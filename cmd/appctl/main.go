package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"stratools/internal/app/bootstrap"
	"stratools/internal/app/config"
	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/infra/persistence/mysql"
	"stratools/internal/app/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: appctl create -name NAME [-permission READ|WRITE|NONE] [-active-until 2026-12-31T00:00:00Z] [-description TEXT] [-config PATH]\n")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "create" {
		usage()
	}

	fs := flag.NewFlagSet("create", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "配置文件路径")
	name := fs.String("name", "", "App 名称")
	description := fs.String("description", "", "描述")
	permission := fs.String("permission", string(etapp.PermissionRead), "权限：READ、WRITE 或 NONE")
	activeUntil := fs.String("active-until", "", "过期时间（RFC3339），为空表示不过期")
	_ = fs.Parse(os.Args[2:])

	if *name == "" {
		usage()
	}

	var until *time.Time
	if *activeUntil != "" {
		t, err := time.Parse(time.RFC3339, *activeUntil)
		if err != nil {
			log.Fatalf("Invalid -active-until: %v", err)
		}
		until = &t
	}
	var desc *string
	if *description != "" {
		desc = description
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

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

	svcs := bootstrap.NewServices(db, cfg.Bulk, nil, logger.NewNop())
	app, err := svcs.App.CreateApp(context.Background(), *name, desc, etapp.Permission(*permission), until)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	fmt.Printf("app created\n  id:         %s\n  name:       %s\n  permission: %s\n  api-key:    %s\n", app.ID, app.Name, app.Permission, app.Secret)
}
