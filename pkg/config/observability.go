package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// LogConfig selects the level and encoding of the service log. Empty values mean info and JSON.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SlogLevel returns the configured level, info when unset.
func (c *LogConfig) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

func (c *LogConfig) String() string {
	return NewSection("Log").
		Add("log.level", c.SlogLevel()).
		Add("log.format", c.Format).
		String()
}

func (c *LogConfig) Validate() error {
	var errs []error
	if _, ok := logLevels[strings.ToLower(c.Level)]; c.Level != "" && !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Level))
	}
	switch c.Format {
	case "", LogFormatJSON, LogFormatText:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q, expected %s or %s", c.Format, LogFormatJSON, LogFormatText))
	}
	return errors.Join(errs...)
}

// MetricsConfig exposes the Prometheus registry on Path.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func (c *MetricsConfig) String() string {
	return NewSection("Metrics").
		Add("metrics.enabled", c.Enabled).
		AddIf(c.Enabled, "metrics.path", c.Path).
		String()
}

func (c *MetricsConfig) Validate() error {
	if c.Enabled && !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("metrics are enabled but path %q is not an absolute URL path", c.Path)
	}
	return nil
}

// TelemetryConfig configures trace export over OTLP/HTTP.
type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
	// ServiceVersion and Environment become resource attributes of every span.
	ServiceVersion string `koanf:"serviceversion"`
	Environment    string `koanf:"environment"`
	// SampleRatio is the fraction of new traces that are recorded; zero records all of them.
	SampleRatio float64      `koanf:"sampleratio"`
	Traces      TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

func (c *TelemetryConfig) String() string {
	return NewSection("Telemetry").
		Add("telemetry.enabled", c.Enabled).
		AddIf(c.Enabled, "telemetry.serviceversion", c.ServiceVersion).
		AddIf(c.Enabled, "telemetry.environment", c.Environment).
		AddIf(c.Enabled, "telemetry.sampleratio", c.SampleRatio).
		AddIf(c.Enabled, "telemetry.traces.otlphttp.endpoint", c.Traces.OtlpHttp.Endpoint).
		AddIf(c.Enabled, "telemetry.traces.otlphttp.insecure", c.Traces.OtlpHttp.Insecure).
		AddIf(c.Enabled, "telemetry.traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout).
		String()
}

func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.Traces.OtlpHttp.Endpoint == "" {
		errs = append(errs, fmt.Errorf("OTel endpoint is not configured"))
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampleratio must be between 0 and 1, got %v", c.SampleRatio))
	}
	errs = positive(errs, namedDuration{"telemetry.traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout})
	return errors.Join(errs...)
}
