// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/signalpipe/signalpipe/component"
)

func TestNewTelemetry(t *testing.T) {
	tel, err := New(Settings{BuildInfo: component.NewDefaultBuildInfo()}, NewDefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, tel.Shutdown(context.Background()))
	})

	require.NotNil(t, tel.Logger())
	require.NotNil(t, tel.MeterProvider())
	assert.True(t, tel.Logger().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, tel.Logger().Core().Enabled(zapcore.DebugLevel))
}

func TestResourceIdentity(t *testing.T) {
	info := component.NewDefaultBuildInfo()
	tel, err := New(Settings{BuildInfo: info}, NewDefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, tel.Shutdown(context.Background()))
	})

	attrs := make(map[string]string)
	for _, kv := range tel.Resource().Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, info.Command, attrs["service.name"])
	assert.Equal(t, info.Version, attrs["service.version"])
	assert.NotEmpty(t, attrs["service.instance.id"])
}

func TestConfigValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logs.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Logs.Encoding = "xml"
	assert.Error(t, cfg.Validate())
}

func TestNewLoggerBadLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logs.Level = "loud"
	_, err := New(Settings{BuildInfo: component.NewDefaultBuildInfo()}, cfg)
	assert.Error(t, err)
}
