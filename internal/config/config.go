// Package config defines process configuration for the kalpha CLI and service.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Validate() reports every field problem wrapped in ErrInvalidConfig.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"unicode/utf8"

	"github.com/okian/kalpha/internal/adapters/loader"
	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Metric is the default distance metric: nominal, interval, ratio or absolute.
	Metric string `koanf:"metric"`

	// Missing lists the raw values treated as absent ratings.
	Missing []string `koanf:"missing"`

	// Delimiter separates table columns. Empty means any run of whitespace.
	Delimiter string `koanf:"delimiter"`

	// Orientation says whether table rows are coders or items.
	Orientation string `koanf:"orientation"`

	// Header marks the first table row as item (or coder) labels.
	Header bool `koanf:"header"`

	// Categorical codes labels by first appearance instead of parsing numbers.
	Categorical bool `koanf:"categorical"`

	// ForceBulk evaluates custom metrics through the vectorized path.
	ForceBulk bool `koanf:"force_bulk"`

	// WorkerCount sets the number of job workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// JobRetention caps how many jobs the store keeps.
	JobRetention int `koanf:"job_retention"`

	// MaxBodyBytes limits HTTP request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		Metric:       alpha.IntervalName,
		Missing:      []string{"*"},
		Orientation:  string(loader.CodersAsRows),
		WorkerCount:  runtime.NumCPU(),
		QueueSize:    1_000,
		JobRetention: 10_000,
		MaxBodyBytes: 8 << 20,
	}
}

// Validate checks field values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if err := scoring.ValidateMetric(c.Metric); err != nil {
		errs = append(errs, err)
	}
	if _, err := loader.ParseOrientation(c.Orientation); err != nil {
		errs = append(errs, err)
	}
	if c.Delimiter != "" && utf8.RuneCountInString(c.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
