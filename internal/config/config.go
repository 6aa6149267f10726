// Package config loads tarefas settings.
//
// Values are layered in priority order:
//  1. Defaults
//  2. Config file (.yaml/.yml or .toml), given explicitly or found as
//     tarefas.yaml, tarefas.yml or tarefas.toml in the working directory
//  3. Environment variables (TAREFAS_*)
//  4. CLI flags, applied by the caller
//
// Validate runs after the last layer.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default values.
const (
	DefaultDriver        = DriverSQLite
	DefaultDBPath        = "tarefas.db"
	DefaultAddr          = ":3000"
	DefaultLogLevel      = "info"
	DefaultBusyTimeoutMS = 5000
)

// Environment variables.
const (
	EnvDB            = "TAREFAS_DB"
	EnvDriver        = "TAREFAS_DRIVER"
	EnvPgDSN         = "TAREFAS_PG_DSN"
	EnvAddr          = "TAREFAS_ADDR"
	EnvLogLevel      = "TAREFAS_LOG_LEVEL"
	EnvBusyTimeoutMS = "TAREFAS_BUSY_TIMEOUT_MS"
)

// projectFiles are looked up in the working directory when no config path
// is given.
var projectFiles = []string{"tarefas.yaml", "tarefas.yml", "tarefas.toml"}

// Config holds the full configuration for tarefas.
type Config struct {
	// Driver selects the store: "sqlite" or "postgres".
	Driver string `yaml:"driver" toml:"driver"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db" toml:"db"`

	// PgDSN is the PostgreSQL connection string.
	PgDSN string `yaml:"pg_dsn" toml:"pg_dsn"`

	// Addr is the HTTP listen address for serve.
	Addr string `yaml:"addr" toml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// BusyTimeoutMS bounds how long a write waits for the store lock.
	BusyTimeoutMS int `yaml:"busy_timeout_ms" toml:"busy_timeout_ms"`

	// File is the config file that was loaded, if any.
	File string `yaml:"-" toml:"-"`
}

// Default returns a Config holding the defaults only.
func Default() *Config {
	return &Config{
		Driver:        DefaultDriver,
		DBPath:        DefaultDBPath,
		Addr:          DefaultAddr,
		LogLevel:      DefaultLogLevel,
		BusyTimeoutMS: DefaultBusyTimeoutMS,
	}
}

// Load builds a Config from defaults, the config file and the environment.
// An explicit path must exist; without one the project files are tried.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findProjectFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.File = path
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findProjectFile() string {
	for _, name := range projectFiles {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvDriver); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv(EnvPgDSN); v != "" {
		cfg.PgDSN = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvBusyTimeoutMS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvBusyTimeoutMS, v)
		}
		cfg.BusyTimeoutMS = n
	}
	return nil
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db path is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		if c.PgDSN == "" {
			return fmt.Errorf("pg_dsn (or %s) is required for the %s driver", EnvPgDSN, DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
	if c.BusyTimeoutMS <= 0 {
		return fmt.Errorf("busy_timeout_ms must be positive, got %d", c.BusyTimeoutMS)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// BusyTimeout returns BusyTimeoutMS as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// SlogLevel returns the configured log level. Invalid levels fall back to
// info; Validate reports them.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}
