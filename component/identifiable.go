// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// typeRegexp checks whether a type name is valid: it must start with an ASCII
// letter and may contain letters, digits and underscores.
var typeRegexp = regexp.MustCompile(`^[a-zA-Z][0-9a-zA-Z_]*$`)

// Type is the component type, e.g. "batch" or "memory_limiter". It uniquely
// identifies a Factory.
type Type struct {
	name string
}

// String returns the string representation of the type.
func (t Type) String() string { return t.name }

// NewType creates a Type, validating the name.
func NewType(name string) (Type, error) {
	if !typeRegexp.MatchString(name) {
		return Type{}, fmt.Errorf("invalid character(s) in type %q", name)
	}
	return Type{name: name}, nil
}

// MustNewType creates a Type and panics on an invalid name. Intended for
// package-level factory type declarations.
func MustNewType(name string) Type {
	t, err := NewType(name)
	if err != nil {
		panic(err)
	}
	return t
}

const typeAndNameSeparator = "/"

// ID identifies one configured component instance: a required type and an
// optional name distinguishing instances of the same type ("batch",
// "memory_limiter/spans").
type ID struct {
	typeVal Type
	nameVal string
}

// NewID creates an ID with an empty name.
func NewID(typeVal Type) ID {
	return ID{typeVal: typeVal}
}

// NewIDWithName creates an ID with the given type and name.
func NewIDWithName(typeVal Type, nameVal string) ID {
	return ID{typeVal: typeVal, nameVal: nameVal}
}

// Type returns the type of the component.
func (id ID) Type() Type { return id.typeVal }

// Name returns the instance name, possibly empty.
func (id ID) Name() string { return id.nameVal }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, parsing "type" or
// "type/name" forms.
func (id *ID) UnmarshalText(text []byte) error {
	idStr := string(text)
	typeStr, nameStr := idStr, ""
	if idx := strings.Index(idStr, typeAndNameSeparator); idx != -1 {
		typeStr, nameStr = idStr[:idx], idStr[idx+1:]
		if nameStr == "" {
			return fmt.Errorf("in %q: name part must not be empty", idStr)
		}
	}
	typeStr = strings.TrimSpace(typeStr)
	if typeStr == "" {
		if nameStr == "" {
			return errors.New("id must not be empty")
		}
		return fmt.Errorf("in %q: type part must not be empty", idStr)
	}
	typeVal, err := NewType(typeStr)
	if err != nil {
		return fmt.Errorf("in %q: %w", idStr, err)
	}
	*id = ID{typeVal: typeVal, nameVal: strings.TrimSpace(nameStr)}
	return nil
}

// String returns "type" for unnamed IDs, "type/name" otherwise.
func (id ID) String() string {
	if id.nameVal == "" {
		return id.typeVal.String()
	}
	return id.typeVal.String() + typeAndNameSeparator + id.nameVal
}
