// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pdata // import "github.com/signalpipe/signalpipe/pdata"

import (
	"fmt"
	"time"
)

type batchState struct {
	signal   Signal
	items    []Item
	seq      uint64
	created  time.Time
	sealed   bool
	readOnly bool
}

// Batch is an ordered group of items of one signal type. A batch is owned by
// exactly one pipeline stage at a time and moves between stages by handoff.
// Copies of a Batch share the same underlying storage.
//
// A batch starts open: items may be appended. Sealing assigns the sequence
// number and freezes membership. Marking read-only additionally freezes it for
// concurrent readers during exporter fan-out.
type Batch struct {
	state *batchState
}

// NewBatch creates an empty open batch for the given signal.
func NewBatch(signal Signal) Batch {
	return Batch{state: &batchState{signal: signal, created: time.Now()}}
}

// Signal returns the signal type of the batch.
func (b Batch) Signal() Signal { return b.state.signal }

// AppendItem adds an item to an open batch. It panics if the batch is sealed,
// read-only, or the item's signal does not match the batch's signal.
func (b Batch) AppendItem(it Item) {
	if b.state.sealed || b.state.readOnly {
		panic("invalid append to sealed pdata.Batch")
	}
	if it.signal != b.state.signal {
		panic(fmt.Sprintf("cannot append %s item to %s batch", it.signal, b.state.signal))
	}
	b.state.items = append(b.state.items, it)
}

// ItemCount returns the number of items in the batch.
func (b Batch) ItemCount() int { return len(b.state.items) }

// ItemAt returns the item at index i.
func (b Batch) ItemAt(i int) Item { return b.state.items[i] }

// Seal closes the batch and assigns its sequence number. Sealing an already
// sealed batch panics.
func (b Batch) Seal(seq uint64) {
	if b.state.sealed {
		panic("pdata.Batch sealed twice")
	}
	b.state.seq = seq
	b.state.sealed = true
}

// Sealed reports whether the batch has been sealed.
func (b Batch) Sealed() bool { return b.state.sealed }

// Sequence returns the sequence number assigned at seal time, zero before.
func (b Batch) Sequence() uint64 { return b.state.seq }

// CreatedAt returns the time the batch was opened.
func (b Batch) CreatedAt() time.Time { return b.state.created }

// MarkReadOnly freezes the batch for concurrent readers.
func (b Batch) MarkReadOnly() { b.state.readOnly = true }

// IsReadOnly reports whether the batch has been marked read-only.
func (b Batch) IsReadOnly() bool { return b.state.readOnly }

// Clone returns an independent, mutable copy of the batch carrying the same
// items, sequence number and creation time.
func (b Batch) Clone() Batch {
	items := make([]Item, len(b.state.items))
	copy(items, b.state.items)
	return Batch{state: &batchState{
		signal:  b.state.signal,
		items:   items,
		seq:     b.state.seq,
		created: b.state.created,
		sealed:  b.state.sealed,
	}}
}
