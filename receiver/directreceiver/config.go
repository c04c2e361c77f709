// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package directreceiver // import "github.com/signalpipe/signalpipe/receiver/directreceiver"

// Config defines configuration for the direct receiver. The receiver is an
// in-process ingest boundary, so there is nothing transport-level to
// configure.
type Config struct{}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	return nil
}
