// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package processor defines the interface for pipeline stages that transform,
// drop or pass through batches between receivers and exporters.
package processor // import "github.com/signalpipe/signalpipe/processor"

import (
	"context"
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

// Processor is a component that consumes batches and forwards the result to
// the next consumer in the pipeline.
type Processor interface {
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

// CreateFunc creates a Processor for the given signal, forwarding to next.
type CreateFunc func(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (Processor, error)

// Factory creates processors of one type.
type Factory interface {
	// Type returns the type of processors this factory creates.
	Type() component.Type

	// CreateDefaultConfig returns the default configuration. The engine
	// overlays the user's resolved configuration on top of it.
	CreateDefaultConfig() component.Config

	// Create a Processor instance. Factories must return
	// pipeline.ErrSignalNotSupported for signals they do not handle.
	Create(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (Processor, error)
}

type factory struct {
	cfgType             component.Type
	createDefaultConfig func() component.Config
	createFunc          CreateFunc
}

func (f *factory) Type() component.Type { return f.cfgType }

func (f *factory) CreateDefaultConfig() component.Config { return f.createDefaultConfig() }

func (f *factory) Create(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (Processor, error) {
	return f.createFunc(ctx, set, cfg, signal, next)
}

// NewFactory returns a Factory backed by the provided functions.
func NewFactory(cfgType component.Type, createDefaultConfig func() component.Config, createFunc CreateFunc) Factory {
	return &factory{cfgType: cfgType, createDefaultConfig: createDefaultConfig, createFunc: createFunc}
}

// Builder resolves processor IDs against configured instances and factories.
type Builder struct {
	cfgs      map[component.ID]component.Config
	factories map[component.Type]Factory
}

// NewBuilder creates a Builder over the given configs and factories.
func NewBuilder(cfgs map[component.ID]component.Config, factories map[component.Type]Factory) *Builder {
	return &Builder{cfgs: cfgs, factories: factories}
}

// Create resolves set.ID and creates the processor. Unresolved IDs are
// construction errors, never steady-state ones.
func (b *Builder) Create(ctx context.Context, set Settings, signal pdata.Signal, next consumer.Consumer) (Processor, error) {
	cfg, existsCfg := b.cfgs[set.ID]
	if !existsCfg {
		return nil, fmt.Errorf("processor %q is not configured", set.ID)
	}
	f, existsFactory := b.factories[set.ID.Type()]
	if !existsFactory {
		return nil, fmt.Errorf("processor factory not available for: %q", set.ID)
	}
	return f.Create(ctx, set, cfg, signal, next)
}

// Factory returns the factory for the given type, nil if not registered.
func (b *Builder) Factory(cfgType component.Type) Factory {
	return b.factories[cfgType]
}
