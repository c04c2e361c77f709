// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pdata // import "github.com/signalpipe/signalpipe/pdata"

import "fmt"

// Signal represents the category of telemetry data that a batch carries.
type Signal struct {
	name string
}

var (
	SignalTraces  = Signal{name: "traces"}
	SignalMetrics = Signal{name: "metrics"}
	SignalLogs    = Signal{name: "logs"}
)

// String returns the name of the signal, or an empty string for the zero value.
func (s Signal) String() string {
	return s.name
}

// MarshalText implements encoding.TextMarshaler.
func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It reports an error for
// anything other than the three known signal names.
func (s *Signal) UnmarshalText(text []byte) error {
	switch string(text) {
	case SignalTraces.name:
		*s = SignalTraces
	case SignalMetrics.name:
		*s = SignalMetrics
	case SignalLogs.name:
		*s = SignalLogs
	default:
		return fmt.Errorf("unknown signal %q", string(text))
	}
	return nil
}
