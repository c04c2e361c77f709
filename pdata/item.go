// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pdata // import "github.com/signalpipe/signalpipe/pdata"

// Item is a single unit of telemetry data: one span, metric point or log
// record. The payload is opaque to the pipeline. Items are immutable once
// created; NewItem copies the payload and attributes it is given.
type Item struct {
	signal  Signal
	payload []byte
	attrs   Map
}

// NewItem creates an immutable Item. The attrs Map may be a zero Map when the
// item carries no attributes.
func NewItem(signal Signal, payload []byte, attrs Map) Item {
	p := make([]byte, len(payload))
	copy(p, payload)
	owned := NewMap()
	attrs.CopyTo(owned)
	owned.MarkReadOnly()
	return Item{signal: signal, payload: p, attrs: owned}
}

// Signal returns the signal type of this item.
func (it Item) Signal() Signal { return it.signal }

// Payload returns the opaque payload. The returned slice is shared; callers
// must not modify it.
func (it Item) Payload() []byte { return it.payload }

// Attributes returns the item's attributes. The returned Map is read-only.
func (it Item) Attributes() Map { return it.attrs }
