// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package receiver defines the interface for components producing data into
// pipelines.
package receiver // import "github.com/signalpipe/signalpipe/receiver"

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

// Receiver is a component that produces data into a pipeline. It pushes
// everything it receives to the consumer it was created with; a receiver
// used by several pipelines is created once and fans out through that
// consumer.
type Receiver interface {
	component.Component
}

// Settings is passed to Create functions of a Factory.
type Settings struct {
	// ID of the component instance that will be created.
	ID component.ID

	component.TelemetrySettings

	// BuildInfo of the binary hosting the engine.
	BuildInfo component.BuildInfo
}

// CreateFunc creates a Receiver that pushes to next.
type CreateFunc func(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (Receiver, error)

// Factory creates receivers of one type.
type Factory interface {
	// Type returns the type of receivers this factory creates.
	Type() component.Type

	// CreateDefaultConfig returns the default configuration.
	CreateDefaultConfig() component.Config

	// Create a Receiver instance pushing to next. Factories must return
	// pipeline.ErrSignalNotSupported for signals they do not handle.
	Create(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (Receiver, error)
}

type factory struct {
	cfgType             component.Type
	createDefaultConfig func() component.Config
	createFunc          CreateFunc
}

func (f *factory) Type() component.Type { return f.cfgType }

func (f *factory) CreateDefaultConfig() component.Config { return f.createDefaultConfig() }

func (f *factory) Create(ctx context.Context, set Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (Receiver, error) {
	return f.createFunc(ctx, set, cfg, signal, next)
}

// NewFactory returns a Factory backed by the provided functions.
func NewFactory(cfgType component.Type, createDefaultConfig func() component.Config, createFunc CreateFunc) Factory {
	return &factory{cfgType: cfgType, createDefaultConfig: createDefaultConfig, createFunc: createFunc}
}

var errNilNextConsumer = errors.New("nil next consumer")

// Builder resolves receiver IDs against configured instances and factories.
type Builder struct {
	cfgs      map[component.ID]component.Config
	factories map[component.Type]Factory
}

// NewBuilder creates a Builder over the given configs and factories.
func NewBuilder(cfgs map[component.ID]component.Config, factories map[component.Type]Factory) *Builder {
	return &Builder{cfgs: cfgs, factories: factories}
}

// Create resolves set.ID and creates the receiver pushing to next.
func (b *Builder) Create(ctx context.Context, set Settings, signal pdata.Signal, next consumer.Consumer) (Receiver, error) {
	if next == nil {
		return nil, errNilNextConsumer
	}
	cfg, existsCfg := b.cfgs[set.ID]
	if !existsCfg {
		return nil, fmt.Errorf("receiver %q is not configured", set.ID)
	}
	f, existsFactory := b.factories[set.ID.Type()]
	if !existsFactory {
		return nil, fmt.Errorf("receiver factory not available for: %q", set.ID)
	}
	return f.Create(ctx, set, cfg, signal, next)
}
