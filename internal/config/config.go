// Package config loads vibecast settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Backend  string        `toml:"backend"`
	SQLite   SQLiteConfig  `toml:"sqlite"`
	Redis    RedisConfig   `toml:"redis"`
	Timezone string        `toml:"timezone"` // IANA name; empty means local time
	Timeout  time.Duration `toml:"store_timeout"`
	LogMode  string        `toml:"log"`
}

type SQLiteConfig struct {
	Path   string `toml:"path"`
	Retain int    `toml:"retain"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Backend: BackendSQLite,
		SQLite: SQLiteConfig{
			Path:   filepath.Join(baseDir(), "vibecast.db"),
			Retain: 20,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "vibecast:",
		},
		Timeout: 5 * time.Second,
	}
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vibecast"
	}
	return filepath.Join(home, ".vibecast")
}

// Path returns the config file location: $VIBECAST_CONFIG or ~/.vibecast/config.toml.
func Path() string {
	if p := os.Getenv("VIBECAST_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(baseDir(), "config.toml")
}

// Load reads the file at path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("VIBECAST_BACKEND")); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("VIBECAST_DB")); v != "" {
		c.SQLite.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("VIBECAST_REDIS_ADDR")); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("VIBECAST_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("VIBECAST_REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VIBECAST_REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v := strings.TrimSpace(os.Getenv("VIBECAST_TZ")); v != "" {
		c.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv("VIBECAST_LOG")); v != "" {
		c.LogMode = v
	}
	return nil
}

// Validate checks the backend name and timezone.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (valid: sqlite, redis, memory)", c.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("store_timeout must not be negative")
	}
	return nil
}

// Location resolves Timezone; calendar days are counted in this zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// Save writes config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
