// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package httpexporter // import "github.com/signalpipe/signalpipe/exporter/httpexporter"

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/signalpipe/signalpipe/configopaque"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
)

// Config defines configuration for the HTTP exporter.
type Config struct {
	exporterhelper.TimeoutConfig `mapstructure:",squash"`

	// Endpoint is the target URL to send batches to (e.g.
	// "https://ingest.example.com/v1/batches").
	Endpoint string `mapstructure:"endpoint"`

	// Headers are added to every request. Values are opaque so that
	// credentials never leak into logs or config dumps.
	Headers map[string]configopaque.String `mapstructure:"headers"`

	// RetryConfig configures retry on transient failure.
	RetryConfig exporterhelper.RetryConfig `mapstructure:"retry_on_failure"`

	// QueueConfig configures the sending queue.
	QueueConfig exporterhelper.QueueConfig `mapstructure:"sending_queue"`
}

// Validate checks if the configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("endpoint must be specified")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
	}
	return cfg.QueueConfig.Validate()
}
