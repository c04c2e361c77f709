// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package debugexporter logs batches to the engine's own logger instead of
// sending them anywhere. It is intended for pipeline debugging and smoke
// tests.
package debugexporter // import "github.com/signalpipe/signalpipe/exporter/debugexporter"

import (
	"context"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/pdata"
)

type debugExporter struct {
	logger    *zap.Logger
	verbosity string
}

func newDebugExporter(logger *zap.Logger, verbosity string) *debugExporter {
	return &debugExporter{logger: logger, verbosity: verbosity}
}

func (d *debugExporter) push(_ context.Context, batch pdata.Batch) error {
	d.logger.Info("Batch received",
		zap.String("signal", batch.Signal().String()),
		zap.Uint64("sequence", batch.Sequence()),
		zap.Int("items", batch.ItemCount()))

	if d.verbosity != VerbosityDetailed {
		return nil
	}
	for i := 0; i < batch.ItemCount(); i++ {
		it := batch.ItemAt(i)
		attrs := make(map[string]string, it.Attributes().Len())
		it.Attributes().Range(func(k string, v pdata.Value) bool {
			attrs[k] = v.AsString()
			return true
		})
		d.logger.Info("Item",
			zap.Int("index", i),
			zap.Int("payload_bytes", len(it.Payload())),
			zap.Any("attributes", attrs))
	}
	return nil
}
