// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package obsreport reports the engine's own operational metrics: items
// received, refused and dropped per stage, and export outcomes per exporter.
// All drops are counted here; nothing is dropped silently.
package obsreport // import "github.com/signalpipe/signalpipe/internal/obsreport"

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/signalpipe/signalpipe/component"
)

const (
	scopeName = "github.com/signalpipe/signalpipe/internal/obsreport"

	receiverKey  = "receiver"
	processorKey = "processor"
	exporterKey  = "exporter"
)

// Receiver reports ingest-side metrics for one receiver instance.
type Receiver struct {
	acceptedItems metric.Int64Counter
	refusedItems  metric.Int64Counter
	attrs         metric.MeasurementOption
}

// NewReceiver creates a Receiver reporter for the given component ID.
func NewReceiver(set component.TelemetrySettings, id component.ID) (*Receiver, error) {
	meter := set.MeterProvider.Meter(scopeName)
	acceptedItems, err := meter.Int64Counter("receiver_accepted_items",
		metric.WithDescription("Number of items successfully pushed into the pipeline."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	refusedItems, err := meter.Int64Counter("receiver_refused_items",
		metric.WithDescription("Number of items that could not be pushed into the pipeline."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	return &Receiver{
		acceptedItems: acceptedItems,
		refusedItems:  refusedItems,
		attrs:         metric.WithAttributes(attribute.String(receiverKey, id.String())),
	}, nil
}

// ItemsAccepted adds to the accepted-items counter.
func (r *Receiver) ItemsAccepted(ctx context.Context, n int) {
	r.acceptedItems.Add(ctx, int64(n), r.attrs)
}

// ItemsRefused adds to the refused-items counter.
func (r *Receiver) ItemsRefused(ctx context.Context, n int) {
	r.refusedItems.Add(ctx, int64(n), r.attrs)
}

func batchesDroppedCounter(meter metric.Meter) (metric.Int64Counter, error) {
	return meter.Int64Counter("processor_batches_dropped",
		metric.WithDescription("Number of whole batches deliberately dropped by the processor."),
		metric.WithUnit("{batches}"))
}

// Processor reports metrics for one processor instance.
type Processor struct {
	droppedItems   metric.Int64Counter
	batchesDropped metric.Int64Counter
	attrs          metric.MeasurementOption
}

// NewProcessor creates a Processor reporter for the given component ID.
func NewProcessor(set component.TelemetrySettings, id component.ID) (*Processor, error) {
	meter := set.MeterProvider.Meter(scopeName)
	droppedItems, err := meter.Int64Counter("processor_dropped_items",
		metric.WithDescription("Number of items deliberately dropped by the processor."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	batchesDropped, err := batchesDroppedCounter(meter)
	if err != nil {
		return nil, err
	}
	return &Processor{
		droppedItems:   droppedItems,
		batchesDropped: batchesDropped,
		attrs:          metric.WithAttributes(attribute.String(processorKey, id.String())),
	}, nil
}

// ItemsDropped adds to the dropped-items counter.
func (p *Processor) ItemsDropped(ctx context.Context, n int) {
	p.droppedItems.Add(ctx, int64(n), p.attrs)
}

// BatchesDropped adds to the batches-dropped counter.
func (p *Processor) BatchesDropped(ctx context.Context, n int) {
	p.batchesDropped.Add(ctx, int64(n), p.attrs)
}

// MemoryLimiter reports admission-control metrics for one memory limiter
// instance. Pressure-induced loss gets dedicated counters so it is never
// conflated with deliberate processor drops.
type MemoryLimiter struct {
	refusedItems   metric.Int64Counter
	droppedItems   metric.Int64Counter
	batchesDropped metric.Int64Counter
	attrs          metric.MeasurementOption
}

// NewMemoryLimiter creates a MemoryLimiter reporter for the given component
// ID.
func NewMemoryLimiter(set component.TelemetrySettings, id component.ID) (*MemoryLimiter, error) {
	meter := set.MeterProvider.Meter(scopeName)
	refusedItems, err := meter.Int64Counter("memory_limiter_refused_items",
		metric.WithDescription("Number of items refused with backpressure under the soft memory limit."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	droppedItems, err := meter.Int64Counter("memory_limiter_dropped_items",
		metric.WithDescription("Number of items dropped under the hard memory limit."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	batchesDropped, err := batchesDroppedCounter(meter)
	if err != nil {
		return nil, err
	}
	return &MemoryLimiter{
		refusedItems:   refusedItems,
		droppedItems:   droppedItems,
		batchesDropped: batchesDropped,
		attrs:          metric.WithAttributes(attribute.String(processorKey, id.String())),
	}, nil
}

// ItemsRefused adds to the refused-items counter.
func (ml *MemoryLimiter) ItemsRefused(ctx context.Context, n int) {
	ml.refusedItems.Add(ctx, int64(n), ml.attrs)
}

// ItemsDropped adds to the dropped-items counter.
func (ml *MemoryLimiter) ItemsDropped(ctx context.Context, n int) {
	ml.droppedItems.Add(ctx, int64(n), ml.attrs)
}

// BatchesDropped adds to the batches-dropped counter.
func (ml *MemoryLimiter) BatchesDropped(ctx context.Context, n int) {
	ml.batchesDropped.Add(ctx, int64(n), ml.attrs)
}

// Batcher reports flush metrics for one batch processor instance: which
// trigger sealed each batch and the sealed batch sizes.
type Batcher struct {
	sizeTriggerSend    metric.Int64Counter
	timeoutTriggerSend metric.Int64Counter
	batchSendSize      metric.Int64Histogram
	attrs              metric.MeasurementOption
}

// NewBatcher creates a Batcher reporter for the given component ID.
func NewBatcher(set component.TelemetrySettings, id component.ID) (*Batcher, error) {
	meter := set.MeterProvider.Meter(scopeName)
	sizeTriggerSend, err := meter.Int64Counter("batch_size_trigger_send",
		metric.WithDescription("Number of times the batch was sent due to the size trigger."),
		metric.WithUnit("{times}"))
	if err != nil {
		return nil, err
	}
	timeoutTriggerSend, err := meter.Int64Counter("batch_timeout_trigger_send",
		metric.WithDescription("Number of times the batch was sent due to the timeout trigger."),
		metric.WithUnit("{times}"))
	if err != nil {
		return nil, err
	}
	batchSendSize, err := meter.Int64Histogram("batch_send_size",
		metric.WithDescription("Number of items in the sealed batch."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	return &Batcher{
		sizeTriggerSend:    sizeTriggerSend,
		timeoutTriggerSend: timeoutTriggerSend,
		batchSendSize:      batchSendSize,
		attrs:              metric.WithAttributes(attribute.String(processorKey, id.String())),
	}, nil
}

// SizeTriggerSend records a flush caused by the batch reaching its size
// threshold.
func (b *Batcher) SizeTriggerSend(ctx context.Context, size int) {
	b.sizeTriggerSend.Add(ctx, 1, b.attrs)
	b.batchSendSize.Record(ctx, int64(size), b.attrs)
}

// TimeoutTriggerSend records a flush caused by the timer, including the
// final flush on shutdown.
func (b *Batcher) TimeoutTriggerSend(ctx context.Context, size int) {
	b.timeoutTriggerSend.Add(ctx, 1, b.attrs)
	b.batchSendSize.Record(ctx, int64(size), b.attrs)
}

// Exporter reports delivery metrics for one exporter instance.
type Exporter struct {
	sentItems          metric.Int64Counter
	failedItems        metric.Int64Counter
	enqueueFailedItems metric.Int64Counter
	attrs              metric.MeasurementOption
}

// NewExporter creates an Exporter reporter for the given component ID.
func NewExporter(set component.TelemetrySettings, id component.ID) (*Exporter, error) {
	meter := set.MeterProvider.Meter(scopeName)
	sentItems, err := meter.Int64Counter("exporter_sent_items",
		metric.WithDescription("Number of items successfully sent to destination."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	failedItems, err := meter.Int64Counter("exporter_send_failed_items",
		metric.WithDescription("Number of items in failed attempts to send to destination."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	enqueueFailedItems, err := meter.Int64Counter("exporter_enqueue_failed_items",
		metric.WithDescription("Number of items failed to be added to the sending queue."),
		metric.WithUnit("{items}"))
	if err != nil {
		return nil, err
	}
	return &Exporter{
		sentItems:          sentItems,
		failedItems:        failedItems,
		enqueueFailedItems: enqueueFailedItems,
		attrs:              metric.WithAttributes(attribute.String(exporterKey, id.String())),
	}, nil
}

// ItemsSent adds to the sent-items counter.
func (e *Exporter) ItemsSent(ctx context.Context, n int) {
	e.sentItems.Add(ctx, int64(n), e.attrs)
}

// ItemsFailed adds to the send-failed counter.
func (e *Exporter) ItemsFailed(ctx context.Context, n int) {
	e.failedItems.Add(ctx, int64(n), e.attrs)
}

// ItemsEnqueueFailed adds to the enqueue-failed counter.
func (e *Exporter) ItemsEnqueueFailed(ctx context.Context, n int) {
	e.enqueueFailedItems.Add(ctx, int64(n), e.attrs)
}
