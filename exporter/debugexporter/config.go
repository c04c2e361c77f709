// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package debugexporter // import "github.com/signalpipe/signalpipe/exporter/debugexporter"

import "fmt"

const (
	// VerbosityBasic logs a one-line summary per batch.
	VerbosityBasic = "basic"
	// VerbosityDetailed additionally logs every item's attributes and
	// payload size.
	VerbosityDetailed = "detailed"
)

// Config defines configuration for the debug exporter.
type Config struct {
	// Verbosity controls how much of each batch is logged, "basic" or
	// "detailed".
	Verbosity string `mapstructure:"verbosity"`
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	switch cfg.Verbosity {
	case VerbosityBasic, VerbosityDetailed:
		return nil
	}
	return fmt.Errorf("verbosity level %q is not supported", cfg.Verbosity)
}
