// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package httpexporter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/component/componenttest"
	"github.com/signalpipe/signalpipe/configopaque"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
	"github.com/signalpipe/signalpipe/pdata"
)

func newTestSettings() exporter.Settings {
	return exporter.Settings{
		ID:                component.NewID(componentType),
		TelemetrySettings: componenttest.NewNopTelemetrySettings(),
		BuildInfo:         component.NewDefaultBuildInfo(),
	}
}

func newTestBatch() pdata.Batch {
	attrs := pdata.NewMap()
	attrs.PutStr("service", "checkout")
	attrs.PutInt("retries", 2)
	batch := pdata.NewBatch(pdata.SignalTraces)
	batch.AppendItem(pdata.NewItem(pdata.SignalTraces, []byte{0x01, 0x02}, attrs))
	batch.Seal(42)
	return batch
}

func TestConfigValidate(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	assert.Error(t, cfg.Validate())

	cfg.Endpoint = "ftp://example.com"
	assert.Error(t, cfg.Validate())

	cfg.Endpoint = "https://example.com/v1/batches"
	assert.NoError(t, cfg.Validate())
}

func TestPushEnvelope(t *testing.T) {
	var received atomic.Pointer[batchEnvelope]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer s3cr3t", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var env batchEnvelope
		require.NoError(t, json.Unmarshal(body, &env))
		received.Store(&env)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := newHTTPExporter(&Config{
		Endpoint: srv.URL,
		Headers:  map[string]configopaque.String{"Authorization": "Bearer s3cr3t"},
	})
	require.NoError(t, h.push(context.Background(), newTestBatch()))

	env := received.Load()
	require.NotNil(t, env)
	assert.Equal(t, "traces", env.Signal)
	assert.Equal(t, uint64(42), env.Sequence)
	require.Len(t, env.Items, 1)
	assert.Equal(t, []byte{0x01, 0x02}, env.Items[0].Payload)
	assert.Equal(t, "checkout", env.Items[0].Attributes["service"])
	// JSON numbers decode as float64.
	assert.Equal(t, float64(2), env.Items[0].Attributes["retries"])
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status     int
		retryAfter string
		permanent  bool
		throttle   time.Duration
		transient  bool
	}{
		{status: http.StatusOK},
		{status: http.StatusAccepted},
		{status: http.StatusBadRequest, permanent: true},
		{status: http.StatusNotFound, permanent: true},
		{status: http.StatusTooManyRequests, retryAfter: "3", throttle: 3 * time.Second},
		{status: http.StatusServiceUnavailable, throttle: 0},
		{status: http.StatusInternalServerError, transient: true},
		{status: http.StatusBadGateway, transient: true},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if tt.retryAfter != "" {
				w.Header().Set("Retry-After", tt.retryAfter)
			}
			w.WriteHeader(tt.status)
		}))

		h := newHTTPExporter(&Config{Endpoint: srv.URL})
		err := h.push(context.Background(), newTestBatch())
		switch {
		case tt.permanent:
			assert.True(t, consumererror.IsPermanent(err), "status %d", tt.status)
		case tt.status == http.StatusTooManyRequests || tt.status == http.StatusServiceUnavailable:
			var throttle consumererror.Throttle
			require.ErrorAs(t, err, &throttle, "status %d", tt.status)
			assert.Equal(t, tt.throttle, throttle.RetryDelay())
		case tt.transient:
			require.Error(t, err, "status %d", tt.status)
			assert.False(t, consumererror.IsPermanent(err))
		default:
			assert.NoError(t, err, "status %d", tt.status)
		}
		srv.Close()
	}
}

func TestExporterRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = srv.URL
	cfg.QueueConfig.Enabled = false
	cfg.RetryConfig.InitialInterval = time.Millisecond
	cfg.RetryConfig.MaxInterval = 5 * time.Millisecond

	exp, err := createExporter(context.Background(), newTestSettings(), cfg, pdata.SignalTraces)
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	require.NoError(t, exp.Consume(context.Background(), newTestBatch()))
	assert.Equal(t, int64(2), calls.Load())
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestExporterPermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := createDefaultConfig().(*Config)
	cfg.Endpoint = srv.URL
	cfg.QueueConfig.Enabled = false
	cfg.RetryConfig.InitialInterval = time.Millisecond

	exp, err := createExporter(context.Background(), newTestSettings(), cfg, pdata.SignalTraces)
	require.NoError(t, err)
	require.NoError(t, exp.Start(context.Background(), componenttest.NewNopHost()))

	err = exp.Consume(context.Background(), newTestBatch())
	assert.True(t, consumererror.IsPermanent(err))
	assert.Equal(t, int64(1), calls.Load())
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestDefaultConfigUsesHelperDefaults(t *testing.T) {
	cfg := createDefaultConfig().(*Config)
	assert.Equal(t, exporterhelper.NewDefaultTimeoutConfig(), cfg.TimeoutConfig)
	assert.True(t, cfg.RetryConfig.Enabled)
	assert.True(t, cfg.QueueConfig.Enabled)
}
