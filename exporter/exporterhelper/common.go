// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package exporterhelper provides the scaffolding shared by exporter
// implementations: a sending queue, retry with exponential backoff, a
// per-attempt timeout and delivery metrics. An exporter built with
// NewExporter only supplies the push function that talks to its destination.
package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/pdata"
)

var (
	errNilPushFunc        = errors.New("nil push func")
	errSendingQueueIsFull = errors.New("sending queue is full")
)

// Option applies a configuration knob to an exporter built by NewExporter.
type Option func(*baseExporter)

// WithTimeout overrides the default per-attempt timeout (5s).
func WithTimeout(cfg TimeoutConfig) Option {
	return func(be *baseExporter) {
		be.timeoutCfg = cfg
	}
}

// WithRetry enables retry on transient failure with the given settings.
func WithRetry(cfg RetryConfig) Option {
	return func(be *baseExporter) {
		be.retryCfg = cfg
	}
}

// WithQueue enables a sending queue between the pipeline and the push
// function.
func WithQueue(cfg QueueConfig) Option {
	return func(be *baseExporter) {
		be.queueCfg = cfg
	}
}

// WithStart sets a hook invoked during exporter Start.
func WithStart(start component.StartFunc) Option {
	return func(be *baseExporter) {
		be.startFunc = start
	}
}

// WithShutdown sets a hook invoked during exporter Shutdown, after the queue
// has drained.
func WithShutdown(shutdown component.ShutdownFunc) Option {
	return func(be *baseExporter) {
		be.shutdownFunc = shutdown
	}
}

// WithCapabilities overrides the default capabilities (MutatesData: false).
func WithCapabilities(capabilities consumer.Capabilities) Option {
	return func(be *baseExporter) {
		be.capabilities = capabilities
	}
}

type baseExporter struct {
	set    exporter.Settings
	obsrep *obsreport.Exporter

	capabilities consumer.Capabilities
	startFunc    component.StartFunc
	shutdownFunc component.ShutdownFunc

	timeoutCfg TimeoutConfig
	retryCfg   RetryConfig
	queueCfg   QueueConfig

	retryStopCh     chan struct{}
	queue           *boundedMemoryQueue
	consumersCancel context.CancelFunc
	sender          sender
}

// NewExporter builds an Exporter around push with the queue/retry/timeout
// behavior selected by the options. The retry sender classifies errors via
// consumererror: permanent errors are never retried, throttle errors floor
// the backoff interval.
func NewExporter(set exporter.Settings, push PushFunc, options ...Option) (exporter.Exporter, error) {
	if push == nil {
		return nil, errNilPushFunc
	}
	obsrep, err := obsreport.NewExporter(set.TelemetrySettings, set.ID)
	if err != nil {
		return nil, err
	}

	be := &baseExporter{
		set:         set,
		obsrep:      obsrep,
		timeoutCfg:  NewDefaultTimeoutConfig(),
		retryStopCh: make(chan struct{}),
	}
	for _, op := range options {
		op(be)
	}

	be.sender = &retrySender{
		cfg:    be.retryCfg,
		next:   &timeoutSender{cfg: be.timeoutCfg, push: push},
		stopCh: be.retryStopCh,
		logger: set.Logger,
	}
	if be.queueCfg.Enabled {
		be.queue = newBoundedMemoryQueue(be.queueCfg.QueueSize)
	}
	return be, nil
}

func (be *baseExporter) Start(ctx context.Context, host component.Host) error {
	if err := be.startFunc.Start(ctx, host); err != nil {
		return err
	}
	if be.queue != nil {
		// The consumers' context outlives the Start call; it is cancelled
		// when a shutdown grace period expires so that in-flight deliveries
		// terminate instead of holding up the drain.
		consumersCtx, cancel := context.WithCancel(context.Background())
		be.consumersCancel = cancel
		be.queue.StartConsumers(be.queueCfg.NumConsumers, func(batch pdata.Batch) {
			if err := be.send(consumersCtx, batch); err != nil {
				be.set.Logger.Error("Exporting failed. Dropping data.",
					zap.Error(err),
					zap.Int("dropped_items", batch.ItemCount()))
			}
		})
	}
	return nil
}

func (be *baseExporter) Shutdown(ctx context.Context) error {
	// Interrupt any in-flight backoff wait, then let the queue consumers
	// drain what is already buffered, bounded by the caller's deadline.
	close(be.retryStopCh)
	var errs error
	if be.queue != nil {
		if err := be.queue.Stop(ctx); err != nil {
			// Grace period expired with batches still queued or in flight.
			// Cancel the deliveries so the consumers fail the remainder
			// fast; each abandoned batch is logged and counted as a failed
			// export on its way out.
			be.set.Logger.Error("Shutdown grace period expired. Abandoning queued data.",
				zap.Int("abandoned_batches", be.queue.Size()),
				zap.Error(err))
			if be.consumersCancel != nil {
				be.consumersCancel()
			}
			be.queue.WaitConsumers()
			errs = multierr.Append(errs, err)
		} else if be.consumersCancel != nil {
			be.consumersCancel()
		}
	}
	return multierr.Append(errs, be.shutdownFunc.Shutdown(ctx))
}

func (be *baseExporter) Capabilities() consumer.Capabilities {
	return be.capabilities
}

func (be *baseExporter) Consume(ctx context.Context, batch pdata.Batch) error {
	if be.queue == nil {
		return be.send(ctx, batch)
	}
	if !be.queue.Produce(batch) {
		be.obsrep.ItemsEnqueueFailed(ctx, batch.ItemCount())
		return errSendingQueueIsFull
	}
	return nil
}

// send pushes one batch through the retry/timeout chain and records the
// outcome.
func (be *baseExporter) send(ctx context.Context, batch pdata.Batch) error {
	err := be.sender.send(ctx, batch)
	if err != nil {
		be.obsrep.ItemsFailed(ctx, batch.ItemCount())
		return err
	}
	be.obsrep.ItemsSent(ctx, batch.ItemCount())
	return nil
}
