// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

// BuildInfo is the information about the binary embedding the engine,
// available to components for informational purposes.
type BuildInfo struct {
	// Command is the executable file name, e.g. "signalpipe".
	Command string

	// Description is the full name of the application.
	Description string

	// Version string.
	Version string
}

// NewDefaultBuildInfo returns a default BuildInfo.
func NewDefaultBuildInfo() BuildInfo {
	return BuildInfo{
		Command:     "signalpipe",
		Description: "Signalpipe Telemetry Pipeline Engine",
		Version:     "latest",
	}
}
