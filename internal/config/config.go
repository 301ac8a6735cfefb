// Package config loads server configuration from an optional YAML file and
// the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file named by
// CONFIG_FILE, environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "CONFIG_FILE"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

const (
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultDBPath      = "./data/wattsplit.db"
	DefaultKeyPrefix   = "wattsplit"
	DefaultMetricsPath = "/metrics"
)

var ErrInvalid = errors.New("invalid config")

// Config is the server configuration.
type Config struct {
	Port     int    `yaml:"port" env:"PORT"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Storage selects the durable store: sqlite, redis or memory.
	Storage       string `yaml:"storage" env:"STORAGE_BACKEND"`
	DBPath        string `yaml:"db_path" env:"DB_PATH"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	KeyPrefix     string `yaml:"key_prefix" env:"KEY_PREFIX"`

	MetricsPath string `yaml:"metrics_path" env:"METRICS_PATH"`

	// StaticPath serves a frontend from disk when set.
	StaticPath string `yaml:"static_path" env:"STATIC_PATH"`

	// PublicURL is printed in export metadata when the session asks for it.
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`
}

// Load reads the configuration. A missing CONFIG_FILE is fine; a file that
// is named but unreadable is an error.
func Load() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv(configPathEnv); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Storage == "" {
		c.Storage = BackendSQLite
	}
	c.Storage = strings.ToLower(c.Storage)
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.MetricsPath == "" {
		c.MetricsPath = DefaultMetricsPath
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	switch c.Storage {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis storage needs REDIS_ADDR", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage)
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("%w: metrics path %q must start with /", ErrInvalid, c.MetricsPath)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
