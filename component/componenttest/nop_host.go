// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package componenttest provides helpers for testing components.
package componenttest // import "github.com/signalpipe/signalpipe/component/componenttest"

import "github.com/signalpipe/signalpipe/component"

type nopHost struct{}

// NewNopHost returns a component.Host with no capabilities.
func NewNopHost() component.Host {
	return &nopHost{}
}
