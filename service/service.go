// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package service assembles configured components into running pipelines and
// drives their lifecycle.
package service // import "github.com/signalpipe/signalpipe/service"

import (
	"context"
	"fmt"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
	"github.com/signalpipe/signalpipe/receiver"
	"github.com/signalpipe/signalpipe/service/internal/graph"
	"github.com/signalpipe/signalpipe/service/telemetry"
)

// Settings holds configuration for building a new Service.
type Settings struct {
	// BuildInfo provides engine start information.
	BuildInfo component.BuildInfo

	// ReceiverFactories maps receiver type names to their factories.
	ReceiverFactories map[component.Type]receiver.Factory

	// ProcessorFactories maps processor type names to their factories.
	ProcessorFactories map[component.Type]processor.Factory

	// ExporterFactories maps exporter type names to their factories.
	ExporterFactories map[component.Type]exporter.Factory

	// LoggingOptions provides a way to change the behavior of zap logging.
	LoggingOptions []zap.Option

	// MetricReaders are attached to the internal meter provider.
	MetricReaders []sdkmetric.Reader
}

// Service is a set of running pipelines. It implements component.Host for
// the components it hosts.
type Service struct {
	buildInfo         component.BuildInfo
	telemetry         *telemetry.Telemetry
	telemetrySettings component.TelemetrySettings
	graph             *graph.Graph
	shutdownTimeout   time.Duration
}

// New validates cfg, builds the engine telemetry and instantiates every
// component of every pipeline. Construction is fail-fast: any unresolved
// reference or component build failure returns an error and nothing is left
// running.
func New(ctx context.Context, set Settings, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tel, err := telemetry.New(telemetry.Settings{
		BuildInfo:     set.BuildInfo,
		ZapOptions:    set.LoggingOptions,
		MetricReaders: set.MetricReaders,
	}, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry: %w", err)
	}

	srv := &Service{
		buildInfo: set.BuildInfo,
		telemetry: tel,
		telemetrySettings: component.TelemetrySettings{
			Logger:        tel.Logger(),
			MeterProvider: tel.MeterProvider(),
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if srv.shutdownTimeout <= 0 {
		srv.shutdownTimeout = defaultShutdownTimeout
	}

	srv.graph, err = graph.Build(ctx, graph.Settings{
		Telemetry:        srv.telemetrySettings,
		BuildInfo:        set.BuildInfo,
		ReceiverBuilder:  receiver.NewBuilder(cfg.Receivers, set.ReceiverFactories),
		ProcessorBuilder: processor.NewBuilder(cfg.Processors, set.ProcessorFactories),
		ExporterBuilder:  exporter.NewBuilder(cfg.Exporters, set.ExporterFactories),
		PipelineConfigs:  cfg.Pipelines,
	})
	if err != nil {
		err = fmt.Errorf("cannot build pipelines: %w", err)
		if shutdownErr := tel.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, shutdownErr)
		}
		return nil, err
	}
	return srv, nil
}

// Start starts every component, downstream components first.
func (srv *Service) Start(ctx context.Context) error {
	srv.telemetrySettings.Logger.Info("Starting "+srv.buildInfo.Command+"...",
		zap.String("version", srv.buildInfo.Version))

	if err := srv.graph.StartAll(ctx, srv); err != nil {
		return multierr.Append(fmt.Errorf("cannot start pipelines: %w", err), srv.graph.ShutdownAll(ctx))
	}
	srv.telemetrySettings.Logger.Info("Everything is ready. Begin running and processing data.")
	return nil
}

// Shutdown stops every component, upstream components first, so in-flight
// data drains toward the exporters. The drain is bounded by the caller's
// context deadline, or by the configured shutdown timeout when the context
// carries none.
func (srv *Service) Shutdown(ctx context.Context) error {
	srv.telemetrySettings.Logger.Info("Starting shutdown...")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, srv.shutdownTimeout)
		defer cancel()
	}

	var errs error
	if err := srv.graph.ShutdownAll(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to shutdown pipelines: %w", err))
	}
	srv.telemetrySettings.Logger.Info("Shutdown complete.")
	if err := srv.telemetry.Shutdown(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to shutdown telemetry: %w", err))
	}
	return errs
}

// Logger returns the engine logger.
func (srv *Service) Logger() *zap.Logger {
	return srv.telemetrySettings.Logger
}

// Receiver returns the shared receiver instance for the given signal and ID.
// Callers feeding data through an in-process receiver obtain it here and
// assert its concrete type.
func (srv *Service) Receiver(signal pdata.Signal, id component.ID) (component.Component, bool) {
	return srv.graph.ReceiverComponent(signal, id)
}
