package pocketflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/pocketflow/metrics"
	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/service/meta"
	"go.uber.org/zap"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON or YAML; the zero value of every section falls back
// to its default.
type Config struct {
	Logging     LoggingConfig `json:"logging" yaml:"logging"`
	Diagnostics policy.Config `json:"diagnostics" yaml:"diagnostics"`
	Retry       RetryConfig   `json:"retry" yaml:"retry"`
	Tracing     TracingConfig `json:"tracing" yaml:"tracing"`
	Metrics     MetricsConfig `json:"metrics" yaml:"metrics"`
	History     HistoryConfig `json:"history" yaml:"history"`
}

// LoggingConfig configures the zap logger built by the service.
type LoggingConfig struct {
	Level    string `json:"level,omitempty" yaml:"level,omitempty"`       // debug, info, warn, error
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"` // json or console
}

// RetryConfig holds the retry defaults of nodes created by the service.
type RetryConfig struct {
	MaxRetries int    `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	Wait       string `json:"wait,omitempty" yaml:"wait,omitempty"` // duration string, e.g. 500ms
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	Enabled        bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	Output         string `json:"output,omitempty" yaml:"output,omitempty"` // file path, stdout when empty
}

// MetricsConfig enables the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// HistoryConfig selects where run records are kept: in memory when URL is
// empty, otherwise as JSON objects under URL.
type HistoryConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DefaultConfig returns a Config populated with the defaults. Callers may
// modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Encoding: "json"},
		Diagnostics: policy.Config{
			Overwrite: policy.ModeWarn,
			Unmatched: policy.ModeWarn,
			Detached:  policy.ModeWarn,
		},
		Retry:   RetryConfig{MaxRetries: 1},
		Tracing: TracingConfig{ServiceName: "pocketflow", ServiceVersion: "dev"},
		Metrics: MetricsConfig{Namespace: metrics.DefaultNamespace},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if _, err := zap.ParseAtomicLevel(c.Logging.level()); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.encoding() {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.encoding: unsupported %q", c.Logging.Encoding))
	}
	if err := c.Diagnostics.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.maxRetries must be >= 0"))
	}
	if _, err := c.Retry.WaitDuration(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WaitDuration parses Wait; empty means no pause.
func (r *RetryConfig) WaitDuration() (time.Duration, error) {
	if strings.TrimSpace(r.Wait) == "" {
		return 0, nil
	}
	ret, err := time.ParseDuration(r.Wait)
	if err != nil {
		return 0, fmt.Errorf("retry.wait: %w", err)
	}
	if ret < 0 {
		return 0, fmt.Errorf("retry.wait must be >= 0")
	}
	return ret, nil
}

func (l *LoggingConfig) level() string {
	if l.Level == "" {
		return "info"
	}
	return l.Level
}

func (l *LoggingConfig) encoding() string {
	if l.Encoding == "" {
		return "json"
	}
	return strings.ToLower(l.Encoding)
}

// Build creates the logger described by the config.
func (l *LoggingConfig) Build() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.level())
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	if l.encoding() == "console" {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = level
	config.Sampling = nil
	return config.Build()
}

// LoadConfig reads a YAML or JSON config from any afs supported URL; values
// may reference environment variables as ${env.KEY}. Missing sections keep
// their defaults. options are passed to the storage (e.g. an embed.FS).
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(afs.New(), "", options...).Load(ctx, URL, ret); err != nil {
		return nil, err
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
