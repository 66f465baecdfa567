// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/maauso/stereo-diarizer/internal/diarize"
)

// Static errors for configuration validation.
var (
	// ErrInvalidPort is returned when PORT is outside 1-65535.
	ErrInvalidPort = errors.New("config: PORT must be between 1 and 65535")
	// ErrS3Incomplete is returned when only one of S3_BUCKET and S3_REGION is set.
	ErrS3Incomplete = errors.New("config: S3_BUCKET and S3_REGION must be set together")
	// ErrInvalidLogFormat is returned for LOG_FORMAT values other than json or text.
	ErrInvalidLogFormat = errors.New("config: LOG_FORMAT must be json or text")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port           int      `env:"PORT, default=8080" json:"port"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" json:"allowed_origins,omitempty"` // Comma-separated; empty disables CORS
	InputDir       string   `env:"INPUT_DIR, default=recordings" json:"input_dir"`   // HTTP file_path values must resolve inside it

	// Storage settings
	TempDir   string `env:"TEMP_DIR, default=/tmp/stereo-diarizer" json:"temp_dir"`
	OutputDir string `env:"OUTPUT_DIR" json:"output_dir,omitempty"` // Empty means ./downloads/diarization

	// Diarization defaults, applied when a request leaves a parameter unset
	FrameSeconds      float64 `env:"FRAME_SECONDS, default=0.5" json:"frame_seconds"`
	SilenceThreshold  float64 `env:"SILENCE_THRESHOLD, default=0.01" json:"silence_threshold"`
	OverlapMargin     float64 `env:"OVERLAP_MARGIN, default=0.2" json:"overlap_margin"`
	MinSegmentSeconds float64 `env:"MIN_SEGMENT_SECONDS, default=0.3" json:"min_segment_seconds"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3KeyPrefix        string `env:"S3_KEY_PREFIX, default=diarization" json:"s3_key_prefix"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates the result.
func Load() (*Config, error) {
	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
// Diarization defaults are not checked here; out-of-range values fall back
// to the built-in defaults when a run resolves its options.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if (c.S3Bucket == "") != (c.S3Region == "") {
		return ErrS3Incomplete
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text", "":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}

// OutputRoot returns the base directory for exported tracks: OUTPUT_DIR when
// set, otherwise the diarize package default.
func (c *Config) OutputRoot() (string, error) {
	if c.OutputDir != "" {
		return filepath.Abs(c.OutputDir)
	}
	return diarize.DefaultOutputDir()
}

// DiarizeDefaults returns the configured diarization defaults.
func (c *Config) DiarizeDefaults() diarize.Options {
	return diarize.Options{
		FrameSeconds:      diarize.Float(c.FrameSeconds),
		SilenceThreshold:  diarize.Float(c.SilenceThreshold),
		OverlapMargin:     diarize.Float(c.OverlapMargin),
		MinSegmentSeconds: diarize.Float(c.MinSegmentSeconds),
		OutputDir:         c.OutputDir,
	}
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo is NewLogger writing to w.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, AllowedOrigins: %v, InputDir: %s, TempDir: %s, OutputDir: %s, FrameSeconds: %g, SilenceThreshold: %g, OverlapMargin: %g, MinSegmentSeconds: %g, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, AWSAccessKeyID: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.AllowedOrigins,
		c.InputDir,
		c.TempDir,
		c.OutputDir,
		c.FrameSeconds,
		c.SilenceThreshold,
		c.OverlapMargin,
		c.MinSegmentSeconds,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		mask(c.AWSAccessKeyID),
		c.LogFormat,
		c.LogLevel,
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
