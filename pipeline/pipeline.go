// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline defines the identity of a pipeline: the signal it carries
// plus an optional name distinguishing pipelines of the same signal.
package pipeline // import "github.com/signalpipe/signalpipe/pipeline"

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signalpipe/signalpipe/pdata"
)

// ErrSignalNotSupported is returned by factories asked to create a component
// for a signal they do not support.
var ErrSignalNotSupported = errors.New("telemetry signal is not supported")

const signalAndNameSeparator = "/"

// ID identifies one pipeline, e.g. "traces" or "metrics/host".
type ID struct {
	signal pdata.Signal
	name   string
}

// NewID creates an ID for the given signal with an empty name.
func NewID(signal pdata.Signal) ID {
	return ID{signal: signal}
}

// NewIDWithName creates an ID for the given signal and name.
func NewIDWithName(signal pdata.Signal, name string) ID {
	return ID{signal: signal, name: name}
}

// Signal returns the signal this pipeline carries.
func (id ID) Signal() pdata.Signal { return id.signal }

// Name returns the pipeline name, possibly empty.
func (id ID) Name() string { return id.name }

// String returns "signal" or "signal/name".
func (id ID) String() string {
	if id.name == "" {
		return id.signal.String()
	}
	return id.signal.String() + signalAndNameSeparator + id.name
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	idStr := string(text)
	signalStr, nameStr := idStr, ""
	if idx := strings.Index(idStr, signalAndNameSeparator); idx != -1 {
		signalStr, nameStr = idStr[:idx], idStr[idx+1:]
		if nameStr == "" {
			return fmt.Errorf("in %q: name part must not be empty", idStr)
		}
	}
	signalStr = strings.TrimSpace(signalStr)
	if signalStr == "" {
		return fmt.Errorf("in %q: signal part must not be empty", idStr)
	}
	var signal pdata.Signal
	if err := signal.UnmarshalText([]byte(signalStr)); err != nil {
		return fmt.Errorf("in %q: %w", idStr, err)
	}
	*id = ID{signal: signal, name: strings.TrimSpace(nameStr)}
	return nil
}
