// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package batchprocessor accumulates items into batches and sends them
// downstream.
//
// Batches are sent out with any of the following conditions:
//   - batch size reaches cfg.SendBatchSize
//   - cfg.Timeout is elapsed since the timestamp when the previous batch was
//     sent out.
//
// Every outgoing batch is sealed with a sequence number strictly greater
// than that of the previous batch sent by this processor instance.
package batchprocessor // import "github.com/signalpipe/signalpipe/processor/batchprocessor"

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
)

type batchProcessor struct {
	logger        *zap.Logger
	obsrep        *obsreport.Batcher
	timeout       time.Duration
	sendBatchSize int

	signal pdata.Signal
	next   consumer.Consumer

	// pending and seq are touched only by the processing goroutine, which
	// keeps the open-batch swap a single-owner critical section.
	timer   *time.Timer
	pending pdata.Batch
	seq     uint64

	newItem    chan pdata.Item
	shutdownC  chan struct{}
	goroutines sync.WaitGroup

	exportCtx context.Context
}

var _ consumer.Consumer = (*batchProcessor)(nil)

func newBatchProcessor(set processor.Settings, cfg *Config, signal pdata.Signal, next consumer.Consumer) (*batchProcessor, error) {
	obsrep, err := obsreport.NewBatcher(set.TelemetrySettings, set.ID)
	if err != nil {
		return nil, err
	}
	return &batchProcessor{
		logger:        set.Logger,
		obsrep:        obsrep,
		timeout:       cfg.Timeout,
		sendBatchSize: int(cfg.SendBatchSize),
		signal:        signal,
		next:          next,
		pending:       pdata.NewBatch(signal),
		newItem:       make(chan pdata.Item, runtime.NumCPU()),
		shutdownC:     make(chan struct{}, 1),
		exportCtx:     context.Background(),
	}, nil
}

func (bp *batchProcessor) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: true}
}

// Start is invoked during service startup.
func (bp *batchProcessor) Start(context.Context, component.Host) error {
	bp.goroutines.Add(1)
	go bp.startProcessingCycle()
	return nil
}

// Shutdown is invoked during service shutdown. It drains queued items and
// flushes the open batch before returning.
func (bp *batchProcessor) Shutdown(context.Context) error {
	close(bp.shutdownC)

	// Wait until all goroutines are done.
	bp.goroutines.Wait()
	return nil
}

// Consume queues every item of the incoming batch for re-batching.
func (bp *batchProcessor) Consume(_ context.Context, batch pdata.Batch) error {
	for i := 0; i < batch.ItemCount(); i++ {
		bp.newItem <- batch.ItemAt(i)
	}
	return nil
}

func (bp *batchProcessor) startProcessingCycle() {
	defer bp.goroutines.Done()
	bp.timer = time.NewTimer(bp.timeout)
	for {
		select {
		case <-bp.shutdownC:
		DONE:
			for {
				select {
				case item := <-bp.newItem:
					bp.processItem(item)
				default:
					break DONE
				}
			}
			if bp.pending.ItemCount() > 0 {
				bp.sendItems("shutdown")
			}
			return
		case item := <-bp.newItem:
			bp.processItem(item)
		case <-bp.timer.C:
			if bp.pending.ItemCount() > 0 {
				bp.sendItems("timeout")
			}
			bp.resetTimer()
		}
	}
}

func (bp *batchProcessor) processItem(item pdata.Item) {
	bp.pending.AppendItem(item)
	if bp.pending.ItemCount() >= bp.sendBatchSize {
		bp.sendItems("size")
		bp.stopTimer()
		bp.resetTimer()
	}
}

func (bp *batchProcessor) stopTimer() {
	if !bp.timer.Stop() {
		<-bp.timer.C
	}
}

func (bp *batchProcessor) resetTimer() {
	bp.timer.Reset(bp.timeout)
}

// sendItems seals the open batch, swaps in a fresh one and hands the sealed
// batch downstream.
func (bp *batchProcessor) sendItems(trigger string) {
	bp.seq++
	sealed := bp.pending
	sealed.Seal(bp.seq)
	bp.pending = pdata.NewBatch(bp.signal)

	if trigger == "size" {
		bp.obsrep.SizeTriggerSend(bp.exportCtx, sealed.ItemCount())
	} else {
		// Timer and shutdown flushes both count as timeout-triggered.
		bp.obsrep.TimeoutTriggerSend(bp.exportCtx, sealed.ItemCount())
	}

	if err := bp.next.Consume(bp.exportCtx, sealed); err != nil {
		bp.logger.Warn("Sender failed",
			zap.Error(err),
			zap.String("trigger", trigger),
			zap.Uint64("sequence", sealed.Sequence()),
			zap.Int("dropped_items", sealed.ItemCount()))
	}
}
