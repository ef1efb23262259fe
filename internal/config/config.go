// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"` // terminal-status write lock
}

// WorkerConfig describes how to reach the external AI worker.
type WorkerConfig struct {
	BaseURL         string        `yaml:"base_url"`
	SecretKey       string        `yaml:"secret_key"` // shared with the callback sender
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ResponseTimeout time.Duration `yaml:"response_timeout"` // generation runs for minutes
	PoolWorkers     int           `yaml:"pool_workers"`     // detached dispatch tasks
}

type AuthConfig struct {
	HMACSecret string `yaml:"hmac_secret"` // verifies bearer tokens minted by the auth service
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Worker   WorkerConfig   `yaml:"worker"`
	Auth     AuthConfig     `yaml:"auth"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Worker.ConnectTimeout <= 0 {
		cfg.Worker.ConnectTimeout = 5 * time.Second
	}
	if cfg.Worker.ResponseTimeout <= 0 {
		cfg.Worker.ResponseTimeout = 300 * time.Second
	}
	if cfg.Worker.PoolWorkers <= 0 {
		cfg.Worker.PoolWorkers = 8
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 30 * time.Second
	}
	if cfg.Worker.BaseURL == "" {
		return nil, fmt.Errorf("worker.base_url is required")
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}
