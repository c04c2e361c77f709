// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry builds the engine's own observability: the zap logger,
// the meter provider feeding the obsreport counters and the resource
// identifying this engine instance.
package telemetry // import "github.com/signalpipe/signalpipe/service/telemetry"

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/signalpipe/signalpipe/component"
)

// Settings holds configuration for building Telemetry.
type Settings struct {
	// BuildInfo identifies the hosting binary in the resource.
	BuildInfo component.BuildInfo

	// ZapOptions provides a way to change the behavior of zap logging.
	ZapOptions []zap.Option

	// MetricReaders are attached to the meter provider. Tests pass a
	// manual reader here; production setups an exporting reader. Empty
	// means internal metrics are recorded but never collected.
	MetricReaders []sdkmetric.Reader
}

// Telemetry bundles the engine's own logger, meter provider and resource.
type Telemetry struct {
	logger        *zap.Logger
	meterProvider *sdkmetric.MeterProvider
	resource      *resource.Resource
}

// New creates Telemetry from the given configuration.
func New(set Settings, cfg Config) (*Telemetry, error) {
	logger, err := newLogger(cfg.Logs, set.ZapOptions)
	if err != nil {
		return nil, err
	}

	res := newResource(set.BuildInfo)
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range set.MetricReaders {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	return &Telemetry{
		logger:        logger,
		meterProvider: sdkmetric.NewMeterProvider(opts...),
		resource:      res,
	}, nil
}

// Logger returns the engine logger.
func (t *Telemetry) Logger() *zap.Logger {
	return t.logger
}

// MeterProvider returns the meter provider for internal metrics.
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// Resource returns the resource identifying this engine instance.
func (t *Telemetry) Resource() *resource.Resource {
	return t.resource
}

// Shutdown flushes and stops the telemetry providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	// The logger sync failure on stderr is not actionable.
	_ = t.logger.Sync()
	return t.meterProvider.Shutdown(ctx)
}

func newLogger(cfg LogsConfig, options []zap.Option) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          cfg.Encoding,
		EncoderConfig:     zap.NewProductionEncoderConfig(),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return zapCfg.Build(options...)
}

func newResource(info component.BuildInfo) *resource.Resource {
	instanceUUID, _ := uuid.NewRandom()
	return resource.NewSchemaless(
		attribute.String("service.name", info.Command),
		attribute.String("service.version", info.Version),
		attribute.String("service.instance.id", instanceUUID.String()),
	)
}
