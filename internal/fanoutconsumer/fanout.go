// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package fanoutconsumer provides the two fan-out points of a pipeline: the
// entry fan-out of a shared receiver into multiple pipelines, and the
// terminal fan-out of sealed batches to the pipeline's exporters.
package fanoutconsumer // import "github.com/signalpipe/signalpipe/internal/fanoutconsumer"

import (
	"context"

	"go.uber.org/multierr"

	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

// NewBatches wraps multiple consumers in a single one. It fans the incoming
// batch out to all of them and does smart routing:
//   - Clones only for the consumers that need to mutate the data.
//   - If all consumers mutate, one of them gets the original mutable batch.
func NewBatches(cs []consumer.Consumer) consumer.Consumer {
	// Don't wrap if there is only one non-mutating consumer.
	if len(cs) == 1 && !cs[0].Capabilities().MutatesData {
		return cs[0]
	}

	fc := &batchesConsumer{}
	for i := range cs {
		if cs[i].Capabilities().MutatesData {
			fc.mutable = append(fc.mutable, cs[i])
		} else {
			fc.readonly = append(fc.readonly, cs[i])
		}
	}
	return fc
}

type batchesConsumer struct {
	mutable  []consumer.Consumer
	readonly []consumer.Consumer
}

func (fc *batchesConsumer) Capabilities() consumer.Capabilities {
	// If all consumers are mutating, the original data is passed to one of them.
	return consumer.Capabilities{MutatesData: len(fc.mutable) > 0 && len(fc.readonly) == 0}
}

// Consume fans the batch out to all consumers wrapped by the current one.
func (fc *batchesConsumer) Consume(ctx context.Context, batch pdata.Batch) error {
	var errs error

	if len(fc.mutable) > 0 {
		// Clone the batch before sending to all mutating consumers except the last.
		for i := 0; i < len(fc.mutable)-1; i++ {
			errs = multierr.Append(errs, fc.mutable[i].Consume(ctx, batch.Clone()))
		}
		// The last mutating consumer may get the original batch, but only if
		// no read-only consumer shares it and the batch is still mutable.
		lastConsumer := fc.mutable[len(fc.mutable)-1]
		if len(fc.readonly) == 0 && !batch.IsReadOnly() {
			errs = multierr.Append(errs, lastConsumer.Consume(ctx, batch))
		} else {
			errs = multierr.Append(errs, lastConsumer.Consume(ctx, batch.Clone()))
		}
	}

	// Mark the batch read-only if more than one read-only consumer will see it.
	if len(fc.readonly) > 1 && !batch.IsReadOnly() {
		batch.MarkReadOnly()
	}
	for _, c := range fc.readonly {
		errs = multierr.Append(errs, c.Consume(ctx, batch))
	}

	return errs
}
