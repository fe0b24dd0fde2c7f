package multirow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config configures a Store and its ambient logging and metrics.
type Config struct {
	// ViewCacheSize is the number of materialized views kept in memory.
	ViewCacheSize int `json:"view_cache_size" yaml:"view_cache_size" validate:"gte=1,lte=1000000"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `json:"metrics_namespace" yaml:"metrics_namespace" validate:"required,alphanum"`

	// InspectOnMutation runs Inspect after every mutation and logs issues.
	InspectOnMutation bool `json:"inspect_on_mutation" yaml:"inspect_on_mutation"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ViewCacheSize:     256,
		LogLevel:          "info",
		LogFormat:         "text",
		MetricsNamespace:  "multirow",
		InspectOnMutation: false,
	}
}

var configValidator = validator.New()

// Validate checks the configuration values.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig loads configuration with priority: env > file > defaults.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) {
	if v := os.Getenv("MULTIROW_VIEW_CACHE_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.ViewCacheSize = i
		}
	}
	if v := os.Getenv("MULTIROW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("MULTIROW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("MULTIROW_METRICS_NAMESPACE"); v != "" {
		cfg.MetricsNamespace = v
	}
	if v := os.Getenv("MULTIROW_INSPECT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.InspectOnMutation = b
		}
	}
}

// NewLogger builds a slog.Logger writing to w according to cfg.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
