// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package fanoutconsumer // import "github.com/signalpipe/signalpipe/internal/fanoutconsumer"

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

// Outcome is the terminal result of delivering one batch to one exporter.
type Outcome int

const (
	// OutcomeSuccess means the exporter accepted the batch.
	OutcomeSuccess Outcome = iota
	// OutcomeFatal means delivery failed permanently for this exporter, after
	// any internal retries. Other exporters are unaffected.
	OutcomeFatal
)

// String returns the name of the outcome.
func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "fatal_failure"
}

// Result pairs an Outcome with the terminal error, nil on success.
type Result struct {
	Outcome Outcome
	Err     error
}

// Exporters delivers each sealed batch to every configured exporter of a
// pipeline concurrently, isolating per-exporter failure.
type Exporters struct {
	consumers map[component.ID]consumer.Consumer
	logger    *zap.Logger
}

// NewExporters creates the exporter fan-out over the given consumers.
func NewExporters(consumers map[component.ID]consumer.Consumer, logger *zap.Logger) *Exporters {
	return &Exporters{consumers: consumers, logger: logger}
}

// Capabilities implements consumer.Consumer. Exporters never mutate.
func (e *Exporters) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

// Dispatch delivers the batch to every exporter concurrently and blocks until
// each has reached a terminal result. The batch is marked read-only before
// the first delivery starts; deliveries may read it concurrently but never
// mutate it.
func (e *Exporters) Dispatch(ctx context.Context, batch pdata.Batch) map[component.ID]Result {
	batch.MarkReadOnly()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[component.ID]Result, len(e.consumers))
	)
	for id, c := range e.consumers {
		wg.Add(1)
		go func(id component.ID, c consumer.Consumer) {
			defer wg.Done()
			err := c.Consume(ctx, batch)
			res := Result{Outcome: OutcomeSuccess}
			if err != nil {
				res = Result{Outcome: OutcomeFatal, Err: err}
				e.logger.Error("Exporter failed to deliver batch.",
					zap.String("exporter", id.String()),
					zap.Uint64("sequence", batch.Sequence()),
					zap.Error(err))
			}
			mu.Lock()
			results[id] = res
			mu.Unlock()
		}(id, c)
	}
	wg.Wait()
	return results
}

// Consume implements consumer.Consumer: it dispatches the batch and folds the
// per-exporter fatal failures into one error. Fatal failures affect only the
// failing exporter; they are reported here for observability, not for retry.
func (e *Exporters) Consume(ctx context.Context, batch pdata.Batch) error {
	var errs error
	for _, res := range e.Dispatch(ctx, batch) {
		if res.Outcome == OutcomeFatal {
			errs = multierr.Append(errs, res.Err)
		}
	}
	return errs
}
