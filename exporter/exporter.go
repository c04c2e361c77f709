// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package exporter defines the interface for components delivering batches to
// external destinations.
package exporter // import "github.com/signalpipe/signalpipe/exporter"

import (
	"context"
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

// Exporter is a component that consumes batches and sends them to a
// destination. The batch handed to an exporter is read-only and may be read
// concurrently by sibling exporters of the same pipeline.
type Exporter interface {
	component.Component
	consumer.Consumer
}

// Settings is passed to Create functions of a Factory.
type Settings struct {
	// ID of the component instance that will be created.
	ID component.ID

	component.TelemetrySettings

	// BuildInfo of the binary hosting the engine.
	BuildInfo component.BuildInfo
}

// CreateFunc creates an Exporter for the given signal.
type CreateFunc func(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal) (Exporter, error)

// Factory creates exporters of one type.
type Factory interface {
	// Type returns the type of exporters this factory creates.
	Type() component.Type

	// CreateDefaultConfig returns the default configuration.
	CreateDefaultConfig() component.Config

	// Create an Exporter instance. Factories must return
	// pipeline.ErrSignalNotSupported for signals they do not handle.
	Create(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal) (Exporter, error)
}

type factory struct {
	cfgType             component.Type
	createDefaultConfig func() component.Config
	createFunc          CreateFunc
}

func (f *factory) Type() component.Type { return f.cfgType }

func (f *factory) CreateDefaultConfig() component.Config { return f.createDefaultConfig() }

func (f *factory) Create(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal) (Exporter, error) {
	return f.createFunc(ctx, set, cfg, signal)
}

// NewFactory returns a Factory backed by the provided functions.
func NewFactory(cfgType component.Type, createDefaultConfig func() component.Config, createFunc CreateFunc) Factory {
	return &factory{cfgType: cfgType, createDefaultConfig: createDefaultConfig, createFunc: createFunc}
}

// Builder resolves exporter IDs against configured instances and factories.
type Builder struct {
	cfgs      map[component.ID]component.Config
	factories map[component.Type]Factory
}

// NewBuilder creates a Builder over the given configs and factories.
func NewBuilder(cfgs map[component.ID]component.Config, factories map[component.Type]Factory) *Builder {
	return &Builder{cfgs: cfgs, factories: factories}
}

// Create resolves set.ID and creates the exporter.
func (b *Builder) Create(ctx context.Context, set Settings, signal pdata.Signal) (Exporter, error) {
	cfg, existsCfg := b.cfgs[set.ID]
	if !existsCfg {
		return nil, fmt.Errorf("exporter %q is not configured", set.ID)
	}
	f, existsFactory := b.factories[set.ID.Type()]
	if !existsFactory {
		return nil, fmt.Errorf("exporter factory not available for: %q", set.ID)
	}
	return f.Create(ctx, set, cfg, signal)
}
