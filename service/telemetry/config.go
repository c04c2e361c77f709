// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry // import "github.com/signalpipe/signalpipe/service/telemetry"

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config defines the configurable settings for the engine's own telemetry.
type Config struct {
	Logs LogsConfig `mapstructure:"logs"`
}

// LogsConfig defines the configurable settings for the engine logger.
type LogsConfig struct {
	// Level is the minimum enabled logging level.
	Level string `mapstructure:"level"`

	// Development puts the logger in development mode, which changes the
	// behavior of DPanicLevel and takes stacktraces more liberally.
	Development bool `mapstructure:"development"`

	// Encoding sets the logger's encoding, "console" or "json".
	Encoding string `mapstructure:"encoding"`
}

// NewDefaultConfig returns the default telemetry configuration.
func NewDefaultConfig() Config {
	return Config{
		Logs: LogsConfig{
			Level:    zapcore.InfoLevel.String(),
			Encoding: "console",
		},
	}
}

// Validate checks if the configuration is valid.
func (cfg Config) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Logs.Level)); err != nil {
		return fmt.Errorf("log level %q is not supported: %w", cfg.Logs.Level, err)
	}
	switch cfg.Logs.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("log encoding %q is not supported", cfg.Logs.Encoding)
	}
	return nil
}
