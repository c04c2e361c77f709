// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/signalpipe/signalpipe/processor/batchprocessor"

import (
	"errors"
	"time"
)

// Config defines configuration for the batch processor.
type Config struct {
	// Timeout is the time after which a non-empty open batch is sent
	// regardless of size.
	Timeout time.Duration `mapstructure:"timeout"`

	// SendBatchSize is the number of items at which the open batch is
	// sealed and sent.
	SendBatchSize uint32 `mapstructure:"send_batch_size"`
}

// NewDefaultConfig returns the default configuration for the batch
// processor.
func NewDefaultConfig() *Config {
	return &Config{
		Timeout:       200 * time.Millisecond,
		SendBatchSize: 8192,
	}
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if cfg.SendBatchSize == 0 {
		return errors.New("send_batch_size must be positive")
	}
	return nil
}
