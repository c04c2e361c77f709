// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package memorylimiterprocessor // import "github.com/signalpipe/signalpipe/processor/memorylimiterprocessor"

import (
	"errors"
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/internal/memorylimiter"
)

const (
	// PolicyRefuse returns ErrDataRefused immediately on soft limit,
	// leaving backpressure to the caller.
	PolicyRefuse = "refuse"
	// PolicyWait blocks up to soft_limit_wait for headroom before
	// refusing.
	PolicyWait = "wait"
)

// Config defines configuration for the memory limiter processor.
type Config struct {
	memorylimiter.Config `mapstructure:",squash"`

	// SoftLimitPolicy selects the behavior above the soft limit, "refuse"
	// or "wait".
	SoftLimitPolicy string `mapstructure:"soft_limit_policy"`

	// SoftLimitWait bounds the blocking time under PolicyWait.
	SoftLimitWait time.Duration `mapstructure:"soft_limit_wait"`
}

// NewDefaultConfig returns the default configuration for the memory limiter
// processor.
func NewDefaultConfig() *Config {
	return &Config{
		Config:          memorylimiter.NewDefaultConfig(),
		SoftLimitPolicy: PolicyRefuse,
		SoftLimitWait:   5 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	if err := cfg.Config.Validate(); err != nil {
		return err
	}
	switch cfg.SoftLimitPolicy {
	case PolicyRefuse:
	case PolicyWait:
		if cfg.SoftLimitWait <= 0 {
			return errors.New("soft_limit_wait must be positive with the wait policy")
		}
	default:
		return fmt.Errorf("soft limit policy %q is not supported", cfg.SoftLimitPolicy)
	}
	return nil
}
