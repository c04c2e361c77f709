// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/pdata"
)

// QueueConfig defines configuration for the sending queue that decouples
// pipeline delivery from destination latency.
type QueueConfig struct {
	// Enabled indicates whether to buffer batches before exporting.
	Enabled bool `mapstructure:"enabled"`
	// NumConsumers is the number of goroutines draining the queue.
	NumConsumers int `mapstructure:"num_consumers"`
	// QueueSize is the maximum number of batches held in the queue.
	QueueSize int `mapstructure:"queue_size"`
}

// NewDefaultQueueConfig returns the default sending queue configuration.
func NewDefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Enabled:      true,
		NumConsumers: 10,
		QueueSize:    1000,
	}
}

// Validate checks if the configuration is valid.
func (cfg *QueueConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.QueueSize <= 0 {
		return errors.New("queue_size must be positive")
	}
	if cfg.NumConsumers <= 0 {
		return errors.New("num_consumers must be positive")
	}
	return nil
}

// RetryConfig defines configuration for retrying failed delivery attempts
// with exponential backoff.
type RetryConfig struct {
	// Enabled indicates whether to retry on transient failure.
	Enabled bool `mapstructure:"enabled"`
	// InitialInterval is the wait after the first failed attempt.
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	// MaxInterval is the ceiling for the backoff interval.
	MaxInterval time.Duration `mapstructure:"max_interval"`
	// MaxElapsedTime is the total time budget for one batch, after which it
	// is dropped. Zero retries forever.
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`
}

// NewDefaultRetryConfig returns the default retry configuration.
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled:         true,
		InitialInterval: 5 * time.Second,
		MaxInterval:     30 * time.Second,
		MaxElapsedTime:  5 * time.Minute,
	}
}

// retrySender resubmits transiently failed batches with exponential backoff.
// Permanent errors short-circuit, throttle errors floor the next interval at
// the delay the destination asked for, and shutdown interrupts any wait.
type retrySender struct {
	cfg    RetryConfig
	next   sender
	stopCh chan struct{}
	logger *zap.Logger
}

func (rs *retrySender) send(ctx context.Context, batch pdata.Batch) error {
	if !rs.cfg.Enabled {
		return rs.next.send(ctx, batch)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = rs.cfg.InitialInterval
	expBackoff.MaxInterval = rs.cfg.MaxInterval
	expBackoff.MaxElapsedTime = rs.cfg.MaxElapsedTime
	expBackoff.Reset()

	for {
		err := rs.next.send(ctx, batch)
		if err == nil {
			return nil
		}

		if consumererror.IsPermanent(err) {
			return err
		}

		backoffDelay := expBackoff.NextBackOff()
		if backoffDelay == backoff.Stop {
			return fmt.Errorf("max elapsed time expired %w", err)
		}

		var throttle consumererror.Throttle
		if errors.As(err, &throttle) && throttle.RetryDelay() > backoffDelay {
			backoffDelay = throttle.RetryDelay()
		}

		rs.logger.Info("Exporting failed. Will retry the request after interval.",
			zap.Error(err),
			zap.String("interval", backoffDelay.String()))

		select {
		case <-ctx.Done():
			return fmt.Errorf("request is cancelled or timed out %w", err)
		case <-rs.stopCh:
			return fmt.Errorf("interrupted due to shutdown %w", err)
		case <-time.After(backoffDelay):
		}
	}
}
