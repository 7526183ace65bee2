package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all pipesort configuration.
type Config struct {
	Pipeline PipelineConfig
	Logging  LogConfig
	Metrics  MetricsConfig
}

// PipelineConfig holds the sort pipeline construction parameters.
type PipelineConfig struct {
	// Workers is the size of the worker process pool.
	Workers int `envconfig:"PIPESORT_WORKERS" default:"5"`
	// MaxRecordBytes bounds one record including its newline terminator.
	MaxRecordBytes int `envconfig:"PIPESORT_MAX_RECORD" default:"4096"`
	// ReapTimeout bounds the wait for a worker to exit after the merge
	// completes; zero waits forever. Workers still alive at the deadline
	// are killed and reported as failed.
	ReapTimeout time.Duration `envconfig:"PIPESORT_REAP_TIMEOUT" default:"0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"PIPESORT_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"PIPESORT_LOG_DEV" default:"false"`
}

// MetricsConfig holds the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	// Metrics are collected either way.
	Addr string `envconfig:"PIPESORT_METRICS_ADDR" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration: the reference pipeline shape of
// five workers and a 4096-byte record bound.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Workers:        5,
			MaxRecordBytes: 4096,
			ReapTimeout:    0,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// Validate rejects construction parameters the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxRecordBytes < 2 {
		return fmt.Errorf("config: max record bytes must be >= 2, got %d", c.Pipeline.MaxRecordBytes)
	}
	return nil
}
