// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/component/componenttest"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/pdata"
)

var defaultID = component.NewID(component.MustNewType("test"))

func newTestSettings() exporter.Settings {
	return exporter.Settings{
		ID:                defaultID,
		TelemetrySettings: componenttest.NewNopTelemetrySettings(),
		BuildInfo:         component.NewDefaultBuildInfo(),
	}
}

func newTestBatch(t *testing.T, items int) pdata.Batch {
	t.Helper()
	batch := pdata.NewBatch(pdata.SignalTraces)
	for i := 0; i < items; i++ {
		batch.AppendItem(pdata.NewItem(pdata.SignalTraces, []byte("payload"), pdata.NewMap()))
	}
	batch.Seal(1)
	return batch
}

func TestNewExporterNilPush(t *testing.T) {
	_, err := NewExporter(newTestSettings(), nil)
	require.Error(t, err)
}

func TestDirectSend(t *testing.T) {
	var pushed atomic.Int64
	exp, err := NewExporter(newTestSettings(), func(_ context.Context, batch pdata.Batch) error {
		pushed.Add(int64(batch.ItemCount()))
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 3)))
	assert.Equal(t, int64(3), pushed.Load())
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestQueuedSendDrainsOnShutdown(t *testing.T) {
	var pushed atomic.Int64
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, batch pdata.Batch) error {
			pushed.Add(int64(batch.ItemCount()))
			return nil
		},
		WithQueue(NewDefaultQueueConfig()))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	for i := 0; i < 10; i++ {
		require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 2)))
	}
	require.NoError(t, exp.Shutdown(context.Background()))
	assert.Equal(t, int64(20), pushed.Load())
}

func TestShutdownAbandonsQueueAtDeadline(t *testing.T) {
	// Destination never answers; every attempt rides out the per-attempt
	// timeout, so draining the full queue would take far longer than the
	// grace period.
	push := func(ctx context.Context, _ pdata.Batch) error {
		<-ctx.Done()
		return ctx.Err()
	}
	exp, err := NewExporter(newTestSettings(), push,
		WithTimeout(TimeoutConfig{Timeout: 200 * time.Millisecond}),
		WithRetry(RetryConfig{Enabled: false}),
		WithQueue(QueueConfig{Enabled: true, NumConsumers: 1, QueueSize: 20}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	for i := 0; i < 10; i++ {
		require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 1)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = exp.Shutdown(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second,
		"shutdown must not ride out the full queue drain")
}

func TestQueueFullRefusesBatch(t *testing.T) {
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	var startedOnce sync.Once
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, _ pdata.Batch) error {
			startedOnce.Do(started.Done)
			<-release
			return nil
		},
		WithQueue(QueueConfig{Enabled: true, NumConsumers: 1, QueueSize: 1}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	// First batch occupies the single consumer, second fills the queue.
	require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 1)))
	started.Wait()
	require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 1)))

	err = exp.Consume(context.Background(), newTestBatch(t, 1))
	assert.ErrorIs(t, err, errSendingQueueIsFull)

	close(release)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestRetryTransientThenSuccess(t *testing.T) {
	var attempts atomic.Int64
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, _ pdata.Batch) error {
			if attempts.Add(1) < 3 {
				return errors.New("temporary failure")
			}
			return nil
		},
		WithRetry(RetryConfig{
			Enabled:         true,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Minute,
		}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 1)))
	assert.Equal(t, int64(3), attempts.Load())
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestRetryPermanentNotRetried(t *testing.T) {
	var attempts atomic.Int64
	wantErr := consumererror.NewPermanent(errors.New("bad data"))
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, _ pdata.Batch) error {
			attempts.Add(1)
			return wantErr
		},
		WithRetry(RetryConfig{
			Enabled:         true,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Minute,
		}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	err = exp.Consume(context.Background(), newTestBatch(t, 1))
	assert.True(t, consumererror.IsPermanent(err))
	assert.Equal(t, int64(1), attempts.Load())
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestRetryHonorsThrottleDelay(t *testing.T) {
	var attempts atomic.Int64
	start := time.Now()
	throttleDelay := 50 * time.Millisecond
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, _ pdata.Batch) error {
			if attempts.Add(1) == 1 {
				return consumererror.NewThrottleRetry(errors.New("slow down"), throttleDelay)
			}
			return nil
		},
		WithRetry(RetryConfig{
			Enabled:         true,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Minute,
		}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 1)))
	assert.Equal(t, int64(2), attempts.Load())
	assert.GreaterOrEqual(t, time.Since(start), throttleDelay)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestShutdownInterruptsRetryWait(t *testing.T) {
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, _ pdata.Batch) error {
			return errors.New("always failing")
		},
		WithRetry(RetryConfig{
			Enabled:         true,
			InitialInterval: time.Hour,
			MaxInterval:     time.Hour,
			MaxElapsedTime:  0,
		}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- exp.Consume(context.Background(), newTestBatch(t, 1))
	}()
	// Let the consume goroutine reach the backoff wait.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, exp.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interrupted due to shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("consume did not return after shutdown")
	}
}

func TestTimeoutAppliedToPush(t *testing.T) {
	exp, err := NewExporter(newTestSettings(),
		func(ctx context.Context, _ pdata.Batch) error {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.LessOrEqual(t, time.Until(deadline), 20*time.Millisecond)
			return nil
		},
		WithTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))
	require.NoError(t, exp.Consume(context.Background(), newTestBatch(t, 1)))
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestStartShutdownHooks(t *testing.T) {
	var startCalled, shutdownCalled bool
	exp, err := NewExporter(newTestSettings(),
		func(_ context.Context, _ pdata.Batch) error { return nil },
		WithStart(func(context.Context, component.Host) error {
			startCalled = true
			return nil
		}),
		WithShutdown(func(context.Context) error {
			shutdownCalled = true
			return nil
		}))
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))
	require.NoError(t, exp.Shutdown(context.Background()))
	assert.True(t, startCalled)
	assert.True(t, shutdownCalled)
}
