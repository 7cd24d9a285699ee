package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Lmstfy LmstfyConfig `mapstructure:"lmstfy"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Jobs   JobsConfig   `mapstructure:"jobs"`
	Bulk   BulkConfig   `mapstructure:"bulk"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// EmbedScheduler 在 apiserver 进程内运行定时任务
	EmbedScheduler bool `mapstructure:"embed_scheduler"`
}

type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LmstfyConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Namespace    string `mapstructure:"namespace"`
	Token        string `mapstructure:"token"`
	TriggerQueue string `mapstructure:"trigger_queue"`
}

type AuthConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type JobsConfig struct {
	DuplicateDetection JobConfig `mapstructure:"duplicate_detection"`
}

// JobConfig 单个定时任务配置
type JobConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type BulkConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	MaxItems  int `mapstructure:"max_items"`
}

// Load 从配置文件加载配置，环境变量 STRATOOLS_* 覆盖文件配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STRATOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// DefaultPath 默认配置文件路径（相对工作目录）
const DefaultPath = "config/config.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stratools")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.embed_scheduler", false)
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.auto_migrate", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lmstfy.host", "")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.namespace", "stratools")
	v.SetDefault("lmstfy.token", "")
	v.SetDefault("lmstfy.trigger_queue", "")
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.rate_limit_rps", 20.0)
	v.SetDefault("auth.rate_limit_burst", 40)
	v.SetDefault("jobs.duplicate_detection.enabled", true)
	v.SetDefault("jobs.duplicate_detection.schedule", "@every 5m")
	v.SetDefault("jobs.duplicate_detection.lock_ttl", 10*time.Minute)
	v.SetDefault("bulk.batch_size", 100)
	v.SetDefault("bulk.max_items", 1000)
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Lmstfy.TriggerQueue != "" && c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required when lmstfy.trigger_queue is set")
	}
	if c.Bulk.BatchSize <= 0 {
		return fmt.Errorf("bulk.batch_size must be positive")
	}
	if c.Bulk.MaxItems < c.Bulk.BatchSize {
		return fmt.Errorf("bulk.max_items must be >= bulk.batch_size")
	}
	if c.Jobs.DuplicateDetection.Enabled && c.Jobs.DuplicateDetection.Schedule == "" {
		return fmt.Errorf("jobs.duplicate_detection.schedule is required")
	}
	return nil
}

// ValidateWorker worker 进程要求 redis 用于任务互斥
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the worker")
	}
	return nil
}
