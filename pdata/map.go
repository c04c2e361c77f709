// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pdata // import "github.com/signalpipe/signalpipe/pdata"

import "sort"

type mapState struct {
	kv       map[string]Value
	readOnly bool
}

// Map is a collection of string-keyed attribute values. Copies of a Map share
// the same underlying storage; use CopyTo to obtain an independent copy.
type Map struct {
	state *mapState
}

// NewMap creates an empty mutable Map.
func NewMap() Map {
	return Map{state: &mapState{kv: make(map[string]Value)}}
}

func (m Map) ensureMutable() {
	if m.state == nil {
		panic("invalid access to uninitialized pdata.Map")
	}
	if m.state.readOnly {
		panic("invalid access to shared readonly pdata.Map")
	}
}

// PutStr sets a string value under the provided key.
func (m Map) PutStr(k, v string) {
	m.ensureMutable()
	m.state.kv[k] = NewValueStr(v)
}

// PutInt sets an int64 value under the provided key.
func (m Map) PutInt(k string, v int64) {
	m.ensureMutable()
	m.state.kv[k] = NewValueInt(v)
}

// PutDouble sets a float64 value under the provided key.
func (m Map) PutDouble(k string, v float64) {
	m.ensureMutable()
	m.state.kv[k] = NewValueDouble(v)
}

// PutBool sets a bool value under the provided key.
func (m Map) PutBool(k string, v bool) {
	m.ensureMutable()
	m.state.kv[k] = NewValueBool(v)
}

// Put sets an arbitrary value under the provided key.
func (m Map) Put(k string, v Value) {
	m.ensureMutable()
	m.state.kv[k] = v
}

// Get retrieves the value under the provided key, if present.
func (m Map) Get(k string) (Value, bool) {
	if m.state == nil {
		return Value{}, false
	}
	v, ok := m.state.kv[k]
	return v, ok
}

// Len returns the number of entries.
func (m Map) Len() int {
	if m.state == nil {
		return 0
	}
	return len(m.state.kv)
}

// Range iterates over entries in key order, stopping early if f returns false.
func (m Map) Range(f func(k string, v Value) bool) {
	if m.state == nil {
		return
	}
	keys := make([]string, 0, len(m.state.kv))
	for k := range m.state.kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !f(k, m.state.kv[k]) {
			return
		}
	}
}

// CopyTo overwrites dest with the content of this Map.
func (m Map) CopyTo(dest Map) {
	dest.ensureMutable()
	for k := range dest.state.kv {
		delete(dest.state.kv, k)
	}
	if m.state == nil {
		return
	}
	for k, v := range m.state.kv {
		dest.state.kv[k] = v
	}
}

// MarkReadOnly makes any further mutation of this Map panic.
func (m Map) MarkReadOnly() {
	if m.state != nil {
		m.state.readOnly = true
	}
}

// IsReadOnly reports whether this Map has been marked read-only.
func (m Map) IsReadOnly() bool {
	return m.state != nil && m.state.readOnly
}
