// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"
	"time"

	"github.com/signalpipe/signalpipe/pdata"
)

// TimeoutConfig bounds the time spent on a single delivery attempt.
type TimeoutConfig struct {
	// Timeout is the per-attempt deadline. Zero disables the deadline.
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewDefaultTimeoutConfig returns the default timeout configuration.
func NewDefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Timeout: 5 * time.Second,
	}
}

// timeoutSender is the last link of the chain, applying the per-attempt
// deadline before handing the batch to the push function.
type timeoutSender struct {
	cfg  TimeoutConfig
	push PushFunc
}

func (ts *timeoutSender) send(ctx context.Context, batch pdata.Batch) error {
	if ts.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ts.cfg.Timeout)
		defer cancel()
	}
	return ts.push(ctx, batch)
}
