// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pdata // import "github.com/signalpipe/signalpipe/pdata"

import "strconv"

// ValueType specifies the type of Value.
type ValueType int32

const (
	ValueTypeEmpty ValueType = iota
	ValueTypeStr
	ValueTypeInt
	ValueTypeDouble
	ValueTypeBool
	ValueTypeBytes
)

// String returns the string representation of the ValueType.
func (vt ValueType) String() string {
	switch vt {
	case ValueTypeEmpty:
		return "Empty"
	case ValueTypeStr:
		return "Str"
	case ValueTypeInt:
		return "Int"
	case ValueTypeDouble:
		return "Double"
	case ValueTypeBool:
		return "Bool"
	case ValueTypeBytes:
		return "Bytes"
	}
	return ""
}

// Value is a typed attribute value. The zero Value has type ValueTypeEmpty.
type Value struct {
	t   ValueType
	str string
	i   int64
	d   float64
	b   bool
	bs  []byte
}

func NewValueStr(v string) Value     { return Value{t: ValueTypeStr, str: v} }
func NewValueInt(v int64) Value      { return Value{t: ValueTypeInt, i: v} }
func NewValueDouble(v float64) Value { return Value{t: ValueTypeDouble, d: v} }
func NewValueBool(v bool) Value      { return Value{t: ValueTypeBool, b: v} }

// NewValueBytes copies the provided bytes into a new Value.
func NewValueBytes(v []byte) Value {
	bs := make([]byte, len(v))
	copy(bs, v)
	return Value{t: ValueTypeBytes, bs: bs}
}

// Type returns the type of this Value.
func (v Value) Type() ValueType { return v.t }

func (v Value) Str() string     { return v.str }
func (v Value) Int() int64      { return v.i }
func (v Value) Double() float64 { return v.d }
func (v Value) Bool() bool      { return v.b }

// Bytes returns a copy of the byte payload of this Value.
func (v Value) Bytes() []byte {
	bs := make([]byte, len(v.bs))
	copy(bs, v.bs)
	return bs
}

// AsString converts the Value to its string representation.
func (v Value) AsString() string {
	switch v.t {
	case ValueTypeStr:
		return v.str
	case ValueTypeInt:
		return strconv.FormatInt(v.i, 10)
	case ValueTypeDouble:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case ValueTypeBool:
		return strconv.FormatBool(v.b)
	case ValueTypeBytes:
		return string(v.bs)
	}
	return ""
}

// Equal reports whether two values have the same type and content.
func (v Value) Equal(other Value) bool {
	if v.t != other.t {
		return false
	}
	switch v.t {
	case ValueTypeBytes:
		return string(v.bs) == string(other.bs)
	default:
		return v.str == other.str && v.i == other.i && v.d == other.d && v.b == other.b
	}
}
