// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package configopaque implements a String type for sensitive configuration
// values such as credentials, which masks itself when printed or marshaled.
package configopaque // import "github.com/signalpipe/signalpipe/configopaque"

const maskedString = "[REDACTED]"

// String alias for string used for sensitive config values. The engine never
// inspects the value; it only forwards it to the component it configures.
type String string

var _ interface {
	String() string
	GoString() string
	MarshalText() ([]byte, error)
} = String("")

// MarshalText masks the value so it is not written out by config dumps.
func (s String) MarshalText() ([]byte, error) {
	return []byte(maskedString), nil
}

// String masks the value so it is not printed by fmt verbs.
func (s String) String() string {
	return maskedString
}

// GoString masks the value for the %#v verb.
func (s String) GoString() string {
	return maskedString
}
