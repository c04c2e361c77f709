// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package obsreport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestExporterCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	set := component.TelemetrySettings{
		Logger:        zap.NewNop(),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}

	exp, err := NewExporter(set, component.NewID(component.MustNewType("debug")))
	require.NoError(t, err)

	exp.ItemsSent(context.Background(), 7)
	exp.ItemsFailed(context.Background(), 2)
	exp.ItemsEnqueueFailed(context.Background(), 1)

	assert.Equal(t, int64(7), collectSum(t, reader, "exporter_sent_items"))
	assert.Equal(t, int64(2), collectSum(t, reader, "exporter_send_failed_items"))
	assert.Equal(t, int64(1), collectSum(t, reader, "exporter_enqueue_failed_items"))
}

func collectHistogramSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range hist.DataPoints {
				total += dp.Sum
			}
			return total
		}
	}
	return 0
}

func TestReceiverCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	set := component.TelemetrySettings{
		Logger:        zap.NewNop(),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}

	rec, err := NewReceiver(set, component.NewID(component.MustNewType("direct")))
	require.NoError(t, err)

	rec.ItemsAccepted(context.Background(), 5)
	rec.ItemsRefused(context.Background(), 3)

	assert.Equal(t, int64(5), collectSum(t, reader, "receiver_accepted_items"))
	assert.Equal(t, int64(3), collectSum(t, reader, "receiver_refused_items"))
}

func TestProcessorCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	set := component.TelemetrySettings{
		Logger:        zap.NewNop(),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}

	proc, err := NewProcessor(set, component.NewID(component.MustNewType("filter")))
	require.NoError(t, err)

	proc.ItemsDropped(context.Background(), 4)
	proc.BatchesDropped(context.Background(), 1)

	assert.Equal(t, int64(4), collectSum(t, reader, "processor_dropped_items"))
	assert.Equal(t, int64(1), collectSum(t, reader, "processor_batches_dropped"))
}

func TestMemoryLimiterCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	set := component.TelemetrySettings{
		Logger:        zap.NewNop(),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}

	ml, err := NewMemoryLimiter(set, component.NewID(component.MustNewType("memory_limiter")))
	require.NoError(t, err)

	ml.ItemsRefused(context.Background(), 6)
	ml.ItemsDropped(context.Background(), 2)
	ml.BatchesDropped(context.Background(), 1)

	assert.Equal(t, int64(6), collectSum(t, reader, "memory_limiter_refused_items"))
	assert.Equal(t, int64(2), collectSum(t, reader, "memory_limiter_dropped_items"))
	assert.Equal(t, int64(1), collectSum(t, reader, "processor_batches_dropped"))
}

func TestBatcherMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	set := component.TelemetrySettings{
		Logger:        zap.NewNop(),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}

	b, err := NewBatcher(set, component.NewID(component.MustNewType("batch")))
	require.NoError(t, err)

	b.SizeTriggerSend(context.Background(), 10)
	b.SizeTriggerSend(context.Background(), 10)
	b.TimeoutTriggerSend(context.Background(), 3)

	assert.Equal(t, int64(2), collectSum(t, reader, "batch_size_trigger_send"))
	assert.Equal(t, int64(1), collectSum(t, reader, "batch_timeout_trigger_send"))
	assert.Equal(t, int64(23), collectHistogramSum(t, reader, "batch_send_size"))
}
