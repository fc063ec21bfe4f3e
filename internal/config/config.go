// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds every setting shared by the CLI and the server
type Config struct {
	Storage        string        `env:"SCOREPAD_STORAGE"         envDefault:"sqlite"`
	DBPath         string        `env:"SCOREPAD_DB"`
	RedisURL       string        `env:"SCOREPAD_REDIS_URL"`
	RedisKeyPrefix string        `env:"SCOREPAD_REDIS_PREFIX"    envDefault:"scorepad"`
	BackupInterval time.Duration `env:"SCOREPAD_BACKUP_INTERVAL" envDefault:"30s"`
	Host           string        `env:"SCOREPAD_HOST"`
	Port           int           `env:"SCOREPAD_PORT"            envDefault:"8080"`
	LogLevel       string        `env:"SCOREPAD_LOG_LEVEL"       envDefault:"info"`
}

// Load reads envFile if it exists, then parses the environment. Variables
// already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, cfg.Validate()
}

// Validate checks the storage selection is usable
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("SCOREPAD_REDIS_URL is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage %q: must be memory, sqlite or redis", c.Storage)
	}
	if c.BackupInterval <= 0 {
		return errors.New("backup interval must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultDBPath is the database location under the user's home directory
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scorepad", "scorepad.db")
	}
	return filepath.Join(home, ".scorepad", "scorepad.db")
}
