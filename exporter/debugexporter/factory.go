// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package debugexporter // import "github.com/signalpipe/signalpipe/exporter/debugexporter"

import (
	"context"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/exporter/exporterhelper"
	"github.com/signalpipe/signalpipe/pdata"
)

var componentType = component.MustNewType("debug")

// NewFactory creates a factory for the debug exporter.
func NewFactory() exporter.Factory {
	return exporter.NewFactory(componentType, createDefaultConfig, createExporter)
}

func createDefaultConfig() component.Config {
	return &Config{
		Verbosity: VerbosityBasic,
	}
}

func createExporter(_ context.Context, set exporter.Settings, cfg component.Config, _ pdata.Signal) (exporter.Exporter, error) {
	dCfg := cfg.(*Config)
	d := newDebugExporter(set.Logger, dCfg.Verbosity)
	return exporterhelper.NewExporter(set, d.push,
		exporterhelper.WithTimeout(exporterhelper.TimeoutConfig{Timeout: 0}))
}
