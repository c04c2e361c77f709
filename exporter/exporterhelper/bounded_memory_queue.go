// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"
	"sync"

	"github.com/signalpipe/signalpipe/pdata"
)

// boundedMemoryQueue is an in-memory FIFO of fixed capacity consumed by a
// pool of goroutines. Produce never blocks: when the queue is at capacity or
// already stopped it reports failure and the caller decides what to do with
// the batch.
type boundedMemoryQueue struct {
	mu        sync.RWMutex
	items     chan pdata.Batch
	stopped   bool
	stopOnce  sync.Once
	consumers sync.WaitGroup
}

func newBoundedMemoryQueue(capacity int) *boundedMemoryQueue {
	return &boundedMemoryQueue{
		items: make(chan pdata.Batch, capacity),
	}
}

// StartConsumers launches n goroutines that invoke consume for every queued
// batch until the queue is stopped and drained.
func (q *boundedMemoryQueue) StartConsumers(n int, consume func(batch pdata.Batch)) {
	for i := 0; i < n; i++ {
		q.consumers.Add(1)
		go func() {
			defer q.consumers.Done()
			for batch := range q.items {
				consume(batch)
			}
		}()
	}
}

// Produce enqueues a batch. Returns false when the queue is full or stopped.
func (q *boundedMemoryQueue) Produce(batch pdata.Batch) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return false
	}
	select {
	case q.items <- batch:
		return true
	default:
		return false
	}
}

// Stop rejects further Produce calls and lets the consumers drain what is
// already queued. The wait is bounded by ctx: on expiry Stop returns ctx.Err()
// with batches still queued or in flight, and the caller decides how to
// terminate them. WaitConsumers completes the handoff afterwards.
func (q *boundedMemoryQueue) Stop(ctx context.Context) error {
	var err error
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		close(q.items)
		q.mu.Unlock()

		done := make(chan struct{})
		go func() {
			q.consumers.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}

// WaitConsumers blocks until every consumer goroutine has exited. Callers use
// it after a deadline-expired Stop, once in-flight deliveries were cancelled.
func (q *boundedMemoryQueue) WaitConsumers() {
	q.consumers.Wait()
}

// Size returns the number of batches currently queued.
func (q *boundedMemoryQueue) Size() int {
	return len(q.items)
}
