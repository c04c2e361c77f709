// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumertest provides consumers for testing pipeline stages.
package consumertest // import "github.com/signalpipe/signalpipe/consumer/consumertest"

import (
	"context"
	"sync"

	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

// Sink is a consumer that stores all consumed batches and allows querying
// them for testing.
type Sink struct {
	mu        sync.Mutex
	batches   []pdata.Batch
	itemCount int
}

var _ consumer.Consumer = (*Sink)(nil)

// Capabilities implements consumer.Consumer.
func (s *Sink) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

// Consume stores the batch in this sink.
func (s *Sink) Consume(_ context.Context, batch pdata.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	s.itemCount += batch.ItemCount()
	return nil
}

// AllBatches returns the batches consumed by this sink since the last Reset.
func (s *Sink) AllBatches() []pdata.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyBatches := make([]pdata.Batch, len(s.batches))
	copy(copyBatches, s.batches)
	return copyBatches
}

// ItemCount returns the number of items consumed by this sink.
func (s *Sink) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemCount
}

// Reset deletes any stored data.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = nil
	s.itemCount = 0
}
