// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package consumertest // import "github.com/signalpipe/signalpipe/consumer/consumertest"

import (
	"context"

	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/pdata"
)

type errConsumer struct {
	err error
}

func (e *errConsumer) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

func (e *errConsumer) Consume(context.Context, pdata.Batch) error {
	return e.err
}

// NewErr returns a consumer.Consumer that just drops all received data and
// returns the specified error to Consume callers.
func NewErr(err error) consumer.Consumer {
	return &errConsumer{err: err}
}

type nopConsumer struct{}

func (nopConsumer) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{}
}

func (nopConsumer) Consume(context.Context, pdata.Batch) error {
	return nil
}

// NewNop returns a consumer.Consumer that drops all received data and returns
// no error.
func NewNop() consumer.Consumer {
	return nopConsumer{}
}
