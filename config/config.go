// SPDX-License-Identifier: MIT

// Package config provides tolerance and logging configuration using Viper.
package config

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GEOREF_GRID_DESIRED_PRECISION.
const EnvPrefix = "GEOREF"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all configuration.
type Config struct {
	Grid    GridConfig    `mapstructure:"grid"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GridConfig holds the numeric tolerances of the localization grid builder.
type GridConfig struct {
	// DesiredPrecision is the default precision in grid cell units.
	DesiredPrecision float64 `mapstructure:"desired_precision"`
	// InferenceEpsilon is the tolerance of grid size inference, relative to the value span.
	InferenceEpsilon float64 `mapstructure:"inference_epsilon"`
	// LinearityThreshold is the minimal correlation for a fit to be called linear.
	LinearityThreshold float64 `mapstructure:"linearity_threshold"`
	// MaxIterations bounds the inverse of interpolated transforms.
	MaxIterations int `mapstructure:"max_iterations"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("grid.desired_precision", 1e-7)
	v.SetDefault("grid.inference_epsilon", 1e-13)
	v.SetDefault("grid.linearity_threshold", 0.9999)
	v.SetDefault("grid.max_iterations", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Default returns the configuration without file or environment overrides.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			DesiredPrecision:   1e-7,
			InferenceEpsilon:   1e-13,
			LinearityThreshold: 0.9999,
			MaxIterations:      50,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load loads configuration from environment and an optional config file.
// An empty configPath searches ./georef.{yaml,json,toml} and ./config/.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("georef")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return errors.Wrapf(ErrInvalidConfig, "logging.format %q", c.Logging.Format)
	}

	return nil
}

// Validate checks the grid tolerances against the ranges the builder accepts.
func (g GridConfig) Validate() error {
	if !(g.DesiredPrecision > 0) || math.IsInf(g.DesiredPrecision, 0) {
		return errors.Wrapf(ErrInvalidConfig, "grid.desired_precision must be finite and > 0, got %g", g.DesiredPrecision)
	}
	if !(g.InferenceEpsilon > 0 && g.InferenceEpsilon < 1) {
		return errors.Wrapf(ErrInvalidConfig, "grid.inference_epsilon must be in (0,1), got %g", g.InferenceEpsilon)
	}
	if !(g.LinearityThreshold > 0 && g.LinearityThreshold <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "grid.linearity_threshold must be in (0,1], got %g", g.LinearityThreshold)
	}
	if g.MaxIterations < 1 {
		return errors.Wrapf(ErrInvalidConfig, "grid.max_iterations must be >= 1, got %d", g.MaxIterations)
	}

	return nil
}
