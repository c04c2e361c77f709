// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/signalpipe/signalpipe/processor/batchprocessor"

import (
	"context"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
)

var componentType = component.MustNewType("batch")

// NewFactory creates a factory for the batch processor.
func NewFactory() processor.Factory {
	return processor.NewFactory(componentType, createDefaultConfig, createProcessor)
}

func createDefaultConfig() component.Config {
	return NewDefaultConfig()
}

func createProcessor(_ context.Context, set processor.Settings, cfg component.Config, signal pdata.Signal, next consumer.Consumer) (processor.Processor, error) {
	return newBatchProcessor(set, cfg.(*Config), signal, next)
}
