// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package memorylimiter // import "github.com/signalpipe/signalpipe/internal/memorylimiter"

import (
	"errors"
	"time"
)

var (
	errCheckIntervalOutOfRange      = errors.New("check_interval must be greater than zero")
	errInconsistentGCMinInterval    = errors.New("min_gc_interval_when_soft_limited must be equal or greater than min_gc_interval_when_hard_limited")
	errLimitOutOfRange              = errors.New("either limit_mib or limit_percentage must be greater than zero")
	errLimitPercentageOutOfRange    = errors.New("limit_percentage and spike_limit_percentage must be values in the range 1-100")
	errMemSpikeLimitOutOfRange      = errors.New("spike_limit_mib must be smaller than limit_mib")
	errMemSpikePercentageOutOfRange = errors.New("spike_limit_percentage must be smaller than limit_percentage")
	errDuplicateLimitDefinition     = errors.New("limit_mib and limit_percentage must not both be set")
)

// Config defines the thresholds and refresh cadence of the memory limiter.
// Limits are either fixed MiB amounts or percentages of total addressable
// memory, never both.
type Config struct {
	// CheckInterval is the time between memory measurements. Admission checks
	// between measurements use the last sampled value.
	CheckInterval time.Duration `mapstructure:"check_interval"`

	// MinGCIntervalWhenSoftLimited minimum interval between forced GC when in
	// the soft-limited zone.
	MinGCIntervalWhenSoftLimited time.Duration `mapstructure:"min_gc_interval_when_soft_limited"`

	// MinGCIntervalWhenHardLimited minimum interval between forced GC when in
	// the hard-limited zone.
	MinGCIntervalWhenHardLimited time.Duration `mapstructure:"min_gc_interval_when_hard_limited"`

	// MemoryLimitMiB is the soft admission limit in MiB.
	MemoryLimitMiB uint32 `mapstructure:"limit_mib"`

	// MemorySpikeLimitMiB is the headroom above the soft limit before the
	// limiter starts dropping instead of refusing, in MiB.
	MemorySpikeLimitMiB uint32 `mapstructure:"spike_limit_mib"`

	// MemoryLimitPercentage is the soft limit as a percentage of total memory.
	MemoryLimitPercentage uint32 `mapstructure:"limit_percentage"`

	// MemorySpikePercentage is the spike headroom as a percentage of total
	// memory.
	MemorySpikePercentage uint32 `mapstructure:"spike_limit_percentage"`
}

// NewDefaultConfig returns the default Config.
func NewDefaultConfig() Config {
	return Config{
		CheckInterval:                time.Second,
		MinGCIntervalWhenSoftLimited: 10 * time.Second,
		MinGCIntervalWhenHardLimited: 10 * time.Second,
	}
}

// Validate checks if the config is valid.
func (cfg Config) Validate() error {
	if cfg.CheckInterval <= 0 {
		return errCheckIntervalOutOfRange
	}
	if cfg.MinGCIntervalWhenSoftLimited < cfg.MinGCIntervalWhenHardLimited {
		return errInconsistentGCMinInterval
	}
	if cfg.MemoryLimitMiB == 0 && cfg.MemoryLimitPercentage == 0 {
		return errLimitOutOfRange
	}
	if cfg.MemoryLimitMiB > 0 && cfg.MemoryLimitPercentage > 0 {
		return errDuplicateLimitDefinition
	}
	if cfg.MemoryLimitMiB > 0 && cfg.MemorySpikeLimitMiB >= cfg.MemoryLimitMiB {
		return errMemSpikeLimitOutOfRange
	}
	if cfg.MemoryLimitPercentage > 0 {
		if cfg.MemoryLimitPercentage > 100 || cfg.MemorySpikePercentage > 100 {
			return errLimitPercentageOutOfRange
		}
		if cfg.MemorySpikePercentage >= cfg.MemoryLimitPercentage {
			return errMemSpikePercentageOutOfRange
		}
	}
	return nil
}
