// Package config loads the missionctl YAML configuration. Every field
// has a working default so a bare `missionctl serve` runs against a
// local SQLite file and the exec gateway.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openclaw/missionctl/pkg/missionctl/gateway"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Standup  StandupConfig  `yaml:"standup"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects and configures the store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file (sqlite driver).
	Path string `yaml:"path"`

	// DSN is the PostgreSQL connection string (postgres driver);
	// empty falls back to DATABASE_URL.
	DSN string `yaml:"dsn"`
}

// GatewayConfig selects and configures the delivery gateway.
type GatewayConfig struct {
	// Mode is "exec" (openclaw CLI) or "http" (gateway endpoint).
	Mode string `yaml:"mode"`

	HTTP gateway.OpenClawConfig `yaml:"http"`
	Exec gateway.ExecConfig     `yaml:"exec"`
}

// DaemonConfig configures the delivery daemon.
type DaemonConfig struct {
	// PollIntervalMs is the polling cadence in milliseconds (default: 2000).
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// DeliveryTimeoutSeconds bounds each delivery attempt (default: 10).
	DeliveryTimeoutSeconds int `yaml:"delivery_timeout_seconds"`

	// AttemptLogPath is the append-only delivery attempt log.
	AttemptLogPath string `yaml:"attempt_log_path"`
}

// StandupConfig configures the scheduled daily standup.
type StandupConfig struct {
	// Enabled turns the cron-scheduled standup on.
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression (default: "0 9 * * *").
	Schedule string `yaml:"schedule"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/mission.db",
		},
		Gateway: GatewayConfig{
			Mode: "exec",
		},
		Daemon: DaemonConfig{
			PollIntervalMs:         2000,
			DeliveryTimeoutSeconds: 10,
			AttemptLogPath:         "/tmp/mission-control-daemon.log",
		},
		Standup: StandupConfig{
			Schedule: "0 9 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path, layered over the defaults. A
// missing path returns the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Gateway.Mode {
	case "exec", "http":
	default:
		return fmt.Errorf("unknown gateway mode %q", c.Gateway.Mode)
	}
	if c.Daemon.PollIntervalMs < 0 {
		return fmt.Errorf("poll_interval_ms must be >= 0")
	}
	return nil
}

// PollInterval returns the daemon polling cadence.
func (c *Config) PollInterval() time.Duration {
	if c.Daemon.PollIntervalMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Daemon.PollIntervalMs) * time.Millisecond
}

// DeliveryTimeout returns the per-attempt delivery timeout.
func (c *Config) DeliveryTimeout() time.Duration {
	if c.Daemon.DeliveryTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Daemon.DeliveryTimeoutSeconds) * time.Second
}
