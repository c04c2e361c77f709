// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchAppendAndSeal(t *testing.T) {
	b := NewBatch(SignalTraces)
	assert.Equal(t, SignalTraces, b.Signal())
	assert.Equal(t, 0, b.ItemCount())
	assert.False(t, b.Sealed())

	b.AppendItem(NewItem(SignalTraces, []byte("span-1"), Map{}))
	b.AppendItem(NewItem(SignalTraces, []byte("span-2"), Map{}))
	require.Equal(t, 2, b.ItemCount())

	b.Seal(7)
	assert.True(t, b.Sealed())
	assert.Equal(t, uint64(7), b.Sequence())
	assert.False(t, b.CreatedAt().IsZero())

	assert.Panics(t, func() { b.AppendItem(NewItem(SignalTraces, nil, Map{})) })
	assert.Panics(t, func() { b.Seal(8) })
}

func TestBatchSignalMismatch(t *testing.T) {
	b := NewBatch(SignalMetrics)
	assert.Panics(t, func() { b.AppendItem(NewItem(SignalLogs, nil, Map{})) })
}

func TestBatchClone(t *testing.T) {
	attrs := NewMap()
	attrs.PutStr("service", "checkout")
	orig := NewBatch(SignalLogs)
	orig.AppendItem(NewItem(SignalLogs, []byte("rec"), attrs))
	orig.Seal(3)
	orig.MarkReadOnly()

	clone := orig.Clone()
	assert.Equal(t, orig.ItemCount(), clone.ItemCount())
	assert.Equal(t, orig.Sequence(), clone.Sequence())
	assert.True(t, clone.Sealed())
	assert.False(t, clone.IsReadOnly())

	v, ok := clone.ItemAt(0).Attributes().Get("service")
	require.True(t, ok)
	assert.Equal(t, "checkout", v.Str())
}

func TestItemImmutability(t *testing.T) {
	attrs := NewMap()
	attrs.PutInt("retries", 1)
	payload := []byte("point")
	it := NewItem(SignalMetrics, payload, attrs)

	// Mutating the inputs after construction must not affect the item.
	payload[0] = 'x'
	attrs.PutInt("retries", 2)

	assert.Equal(t, []byte("point"), it.Payload())
	v, ok := it.Attributes().Get("retries")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())

	assert.True(t, it.Attributes().IsReadOnly())
	assert.Panics(t, func() { it.Attributes().PutStr("k", "v") })
}

func TestMapRangeOrder(t *testing.T) {
	m := NewMap()
	m.PutStr("b", "2")
	m.PutStr("a", "1")
	m.PutBool("c", true)

	var keys []string
	m.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestValueAsString(t *testing.T) {
	assert.Equal(t, "text", NewValueStr("text").AsString())
	assert.Equal(t, "42", NewValueInt(42).AsString())
	assert.Equal(t, "true", NewValueBool(true).AsString())
	assert.Equal(t, "1.5", NewValueDouble(1.5).AsString())
}

func TestSignalUnmarshalText(t *testing.T) {
	var s Signal
	require.NoError(t, s.UnmarshalText([]byte("metrics")))
	assert.Equal(t, SignalMetrics, s)
	assert.Error(t, s.UnmarshalText([]byte("profiles")))
}
