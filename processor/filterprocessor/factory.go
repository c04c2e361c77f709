// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package filterprocessor // import "github.com/signalpipe/signalpipe/processor/filterprocessor"

import (
	"context"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
)

var componentType = component.MustNewType("filter")

// NewFactory creates a factory for the filter processor.
func NewFactory() processor.Factory {
	return processor.NewFactory(componentType, createDefaultConfig, createProcessor)
}

func createDefaultConfig() component.Config {
	return &Config{}
}

func createProcessor(_ context.Context, set processor.Settings, cfg component.Config, _ pdata.Signal, next consumer.Consumer) (processor.Processor, error) {
	return newFilterProcessor(set, cfg.(*Config), next)
}
