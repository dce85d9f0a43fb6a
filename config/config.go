// Package config loads tracknn settings from defaults, an optional YAML
// file, an optional .env file and TRACKNN_* environment variables, in that
// order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "TRACKNN"

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var validate = validator.New()

// Config holds application settings.
type Config struct {
	// DataPath is the track file (.csv or .parquet) loaded into engines.
	DataPath string `yaml:"data_path" envconfig:"DATA_PATH" validate:"required_without=CatalogDSN"`
	// CatalogDSN, when set, loads points from a SQLite track catalog instead.
	CatalogDSN string `yaml:"catalog_dsn" envconfig:"CATALOG_DSN"`
	// Engine is the initial engine kind.
	Engine string `yaml:"engine" envconfig:"ENGINE" validate:"oneof=linear standard tree kdtree"`
	// IgnoreCapacity bounds each engine's ignore list; 0 disables the bound.
	IgnoreCapacity int `yaml:"ignore_capacity" envconfig:"IGNORE_CAPACITY" validate:"gte=0"`
	// StartX and StartY position the initial query point.
	StartX float64 `yaml:"start_x" envconfig:"START_X"`
	StartY float64 `yaml:"start_y" envconfig:"START_Y"`
	// Step is the nudge distance of one key press in the terminal UI.
	Step float64 `yaml:"step" envconfig:"STEP" validate:"gt=0"`

	LogFormat   string `yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=json console"`
	LogLevel    string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile     string `yaml:"log_file" envconfig:"LOG_FILE"`
	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataPath:       "data/data.csv",
		Engine:         "linear",
		IgnoreCapacity: 100,
		StartX:         0.1,
		StartY:         0.1,
		Step:           0.01,
		LogFormat:      "json",
		LogLevel:       "info",
	}
}

// Load builds a Config. configPath and envFile are optional; a missing
// envFile is not an error.
func Load(configPath, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
