package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all harness configuration.
type Config struct {
	Script  ScriptConfig
	Loop    LoopConfig
	Exec    ExecConfig
	Logging LogConfig
}

// ScriptConfig holds script execution limits.
type ScriptConfig struct {
	Timeout time.Duration `envconfig:"SCRIPT_TIMEOUT" default:"30s"`
}

// LoopConfig holds run loop configuration.
type LoopConfig struct {
	QueueDepth int `envconfig:"LOOP_QUEUE_DEPTH" default:"64"`
}

// ExecConfig holds the reference exec capability's HTTP settings.
type ExecConfig struct {
	RequestTimeout time.Duration `envconfig:"EXEC_REQUEST_TIMEOUT" default:"15s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Script: ScriptConfig{
			Timeout: 30 * time.Second,
		},
		Loop: LoopConfig{
			QueueDepth: 64,
		},
		Exec: ExecConfig{
			RequestTimeout: 15 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
