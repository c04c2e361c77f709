// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package httpexporter // import "github.com/signalpipe/signalpipe/exporter/httpexporter"

import (
	"context"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
	"github.com/signalpipe/signalpipe/pdata"
)

var componentType = component.MustNewType("http")

// NewFactory creates a factory for the HTTP exporter.
func NewFactory() exporter.Factory {
	return exporter.NewFactory(componentType, createDefaultConfig, createExporter)
}

func createDefaultConfig() component.Config {
	return &Config{
		TimeoutConfig: exporterhelper.NewDefaultTimeoutConfig(),
		RetryConfig:   exporterhelper.NewDefaultRetryConfig(),
		QueueConfig:   exporterhelper.NewDefaultQueueConfig(),
	}
}

func createExporter(_ context.Context, set exporter.Settings, cfg component.Config, _ pdata.Signal) (exporter.Exporter, error) {
	hCfg := cfg.(*Config)
	h := newHTTPExporter(hCfg)
	return exporterhelper.NewExporter(set, h.push,
		exporterhelper.WithTimeout(hCfg.TimeoutConfig),
		exporterhelper.WithRetry(hCfg.RetryConfig),
		exporterhelper.WithQueue(hCfg.QueueConfig),
		exporterhelper.WithShutdown(h.shutdown))
}
