// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package filterprocessor drops items whose attributes match configured
// equality rules. A batch left empty by filtering is dropped whole; both
// item and batch drops are deliberate and counted.
package filterprocessor // import "github.com/signalpipe/signalpipe/processor/filterprocessor"

import (
	"context"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
)

type filterProcessor struct {
	logger  *zap.Logger
	exclude []MatchProperties
	next    consumer.Consumer
	obsrep  *obsreport.Processor
}

func newFilterProcessor(set processor.Settings, cfg *Config, next consumer.Consumer) (*filterProcessor, error) {
	obsrep, err := obsreport.NewProcessor(set.TelemetrySettings, set.ID)
	if err != nil {
		return nil, err
	}
	return &filterProcessor{
		logger:  set.Logger,
		exclude: cfg.ExcludeAttributes,
		next:    next,
		obsrep:  obsrep,
	}, nil
}

func (fp *filterProcessor) Start(context.Context, component.Host) error { return nil }

func (fp *filterProcessor) Shutdown(context.Context) error { return nil }

func (fp *filterProcessor) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: true}
}

func (fp *filterProcessor) Consume(ctx context.Context, batch pdata.Batch) error {
	dropped := 0
	kept := pdata.NewBatch(batch.Signal())
	for i := 0; i < batch.ItemCount(); i++ {
		it := batch.ItemAt(i)
		if fp.matches(it) {
			dropped++
			continue
		}
		kept.AppendItem(it)
	}

	if dropped == 0 {
		return fp.next.Consume(ctx, batch)
	}
	fp.obsrep.ItemsDropped(ctx, dropped)

	if kept.ItemCount() == 0 {
		fp.obsrep.BatchesDropped(ctx, 1)
		fp.logger.Debug("Batch dropped, all items filtered out",
			zap.Uint64("sequence", batch.Sequence()),
			zap.Int("dropped_items", dropped))
		return nil
	}

	if batch.Sealed() {
		kept.Seal(batch.Sequence())
	}
	return fp.next.Consume(ctx, kept)
}

func (fp *filterProcessor) matches(it pdata.Item) bool {
	for _, rule := range fp.exclude {
		v, ok := it.Attributes().Get(rule.Key)
		if ok && v.AsString() == rule.Value {
			return true
		}
	}
	return false
}
