// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

// Config defines the configuration for a component instance. Concrete config
// structs should implement ConfigValidator when any of their fields require
// validation.
type Config any

// ConfigValidator is an optional interface for configs to implement
// validation. Validation errors are fatal at engine construction, never at
// steady state.
type ConfigValidator interface {
	// Validate the configuration and return an error if invalid.
	Validate() error
}

// ValidateConfig validates cfg if it implements ConfigValidator.
func ValidateConfig(cfg Config) error {
	if v, ok := cfg.(ConfigValidator); ok {
		return v.Validate()
	}
	return nil
}
