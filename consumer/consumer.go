// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumer contains the interface through which telemetry batches
// move from one pipeline stage to the next.
package consumer // import "github.com/signalpipe/signalpipe/consumer"

import (
	"context"
	"errors"

	"github.com/signalpipe/signalpipe/pdata"
)

// Capabilities describes the capabilities of a Consumer.
type Capabilities struct {
	// MutatesData is set to true if the Consume function of the consumer
	// modifies the input batch. Consumers that mutate must set this flag so
	// upstream fan-out can hand them a clone instead of shared data.
	MutatesData bool
}

// Consumer receives batches, processes them as needed, and sends them to the
// next stage if any, or to the destination.
type Consumer interface {
	// Capabilities returns the capabilities of the consumer.
	Capabilities() Capabilities

	// Consume receives one batch. Ownership of an open batch transfers to the
	// consumer; a read-only batch may only be read.
	Consume(ctx context.Context, batch pdata.Batch) error
}

// ConsumeFunc is a function adapter for the Consume method.
type ConsumeFunc func(ctx context.Context, batch pdata.Batch) error

// Consume calls f(ctx, batch).
func (f ConsumeFunc) Consume(ctx context.Context, batch pdata.Batch) error {
	return f(ctx, batch)
}

// Option applies a change to Capabilities of the consumer.
type Option func(*base)

// WithCapabilities overrides the default (non-mutating) capabilities.
func WithCapabilities(capabilities Capabilities) Option {
	return func(b *base) {
		b.capabilities = capabilities
	}
}

type base struct {
	ConsumeFunc
	capabilities Capabilities
}

func (b *base) Capabilities() Capabilities {
	return b.capabilities
}

var errNilFunc = errors.New("nil consumer func")

// NewConsumer returns a Consumer backed by the provided function.
func NewConsumer(consume ConsumeFunc, options ...Option) (Consumer, error) {
	if consume == nil {
		return nil, errNilFunc
	}
	b := &base{ConsumeFunc: consume}
	for _, op := range options {
		op(b)
	}
	return b, nil
}
