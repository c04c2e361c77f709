// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package filterprocessor // import "github.com/signalpipe/signalpipe/processor/filterprocessor"

import "errors"

// MatchProperties is one attribute equality rule.
type MatchProperties struct {
	// Key is the attribute key to compare.
	Key string `mapstructure:"key"`
	// Value is the string form of the attribute value to match.
	Value string `mapstructure:"value"`
}

// Config defines configuration for the filter processor.
type Config struct {
	// ExcludeAttributes drops every item whose attributes match any of
	// the rules.
	ExcludeAttributes []MatchProperties `mapstructure:"exclude_attributes"`
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	for _, rule := range cfg.ExcludeAttributes {
		if rule.Key == "" {
			return errors.New("exclude_attributes rules must set a key")
		}
	}
	return nil
}
