// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package directreceiver is the in-process ingest boundary. Application code
// holding a *Receiver calls Submit with single items; each item enters the
// pipeline synchronously and the returned Decision tells the caller whether
// to retry later (SoftRefused) or give up (HardRefused).
package directreceiver // import "github.com/signalpipe/signalpipe/receiver/directreceiver"

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/receiver"
)

// Decision is the outcome of a Submit call.
type Decision int

const (
	// Accepted means the item entered the pipeline.
	Accepted Decision = iota
	// SoftRefused means the pipeline applied backpressure. The item was
	// not admitted and the caller should retry after a pause.
	SoftRefused
	// HardRefused means the item was rejected terminally. Retrying the
	// same item will not succeed.
	HardRefused
)

// String returns the string representation of the Decision.
func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case SoftRefused:
		return "soft_refused"
	case HardRefused:
		return "hard_refused"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

var errNotStarted = errors.New("receiver is not started")

// Receiver accepts items pushed from in-process callers.
type Receiver struct {
	signal  pdata.Signal
	next    consumer.Consumer
	obsrep  *obsreport.Receiver
	started atomic.Bool
}

func newReceiver(set receiver.Settings, signal pdata.Signal, next consumer.Consumer) (*Receiver, error) {
	obsrep, err := obsreport.NewReceiver(set.TelemetrySettings, set.ID)
	if err != nil {
		return nil, err
	}
	return &Receiver{
		signal: signal,
		next:   next,
		obsrep: obsrep,
	}, nil
}

// Start begins admitting items.
func (r *Receiver) Start(context.Context, component.Host) error {
	r.started.Store(true)
	return nil
}

// Shutdown stops admitting new items. Submit calls racing with Shutdown may
// still be delivered downstream.
func (r *Receiver) Shutdown(context.Context) error {
	r.started.Store(false)
	return nil
}

// Submit pushes one item into the pipeline. It blocks until every attached
// pipeline has admitted or refused the item.
func (r *Receiver) Submit(ctx context.Context, item pdata.Item) (Decision, error) {
	if !r.started.Load() {
		return HardRefused, errNotStarted
	}
	if item.Signal() != r.signal {
		return HardRefused, fmt.Errorf("cannot submit %s item to %s receiver", item.Signal(), r.signal)
	}

	batch := pdata.NewBatch(r.signal)
	batch.AppendItem(item)

	err := r.next.Consume(ctx, batch)
	if err == nil {
		r.obsrep.ItemsAccepted(ctx, 1)
		return Accepted, nil
	}
	r.obsrep.ItemsRefused(ctx, 1)
	if consumererror.IsPermanent(err) {
		return HardRefused, err
	}
	// memorylimiter.ErrDataRefused and other transient failures leave
	// retry with the caller.
	return SoftRefused, err
}
