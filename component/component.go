// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package component defines the building blocks of the pipeline engine:
// identifiable components with a Start/Shutdown lifecycle.
package component // import "github.com/signalpipe/signalpipe/component"

import "context"

// Component is the interface that receivers, processors and exporters
// implement in addition to their data-path interfaces.
type Component interface {
	// Start begins the component's work. Host may be used to interact with
	// the process hosting the component. An error aborts engine startup.
	Start(ctx context.Context, host Host) error

	// Shutdown stops the component. Blocking work must be bounded by ctx.
	Shutdown(ctx context.Context) error
}

// Host is the process shell hosting the engine's components. The engine
// itself places no requirements on it; it exists so embedders can pass their
// own capabilities through to components they author.
type Host interface{}

// StartFunc specifies the function invoked when the component.Component is
// being started.
type StartFunc func(ctx context.Context, host Host) error

// Start calls f if non-nil.
func (f StartFunc) Start(ctx context.Context, host Host) error {
	if f == nil {
		return nil
	}
	return f(ctx, host)
}

// ShutdownFunc specifies the function invoked when the component.Component is
// being shut down.
type ShutdownFunc func(ctx context.Context) error

// Shutdown calls f if non-nil.
func (f ShutdownFunc) Shutdown(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}
