// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package directreceiver // import "github.com/signalpipe/signalpipe/receiver/directreceiver"

import (
	"context"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/receiver"
)

var componentType = component.MustNewType("direct")

// NewFactory creates a factory for the direct receiver.
func NewFactory() receiver.Factory {
	return receiver.NewFactory(componentType, createDefaultConfig, createReceiver)
}

func createDefaultConfig() component.Config {
	return &Config{}
}

func createReceiver(_ context.Context, set receiver.Settings, _ component.Config, signal pdata.Signal, next consumer.Consumer) (receiver.Receiver, error) {
	return newReceiver(set, signal, next)
}
