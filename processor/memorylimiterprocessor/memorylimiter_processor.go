// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package memorylimiterprocessor gates admission into the pipeline based on
// process memory usage. Above the soft limit it refuses data (or briefly
// waits for headroom, depending on policy); above the hard limit it drops
// data outright and counts the drop.
package memorylimiterprocessor // import "github.com/signalpipe/signalpipe/processor/memorylimiterprocessor"

import (
	"context"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/internal/memorylimiter"
	"github.com/signalpipe/signalpipe/internal/obsreport"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
)

var (
	// ErrDataRefused signals soft-limit backpressure: slow down and retry.
	ErrDataRefused = memorylimiter.ErrDataRefused
	// ErrDataDropped signals a hard-limit drop: the data is gone and the
	// drop was counted.
	ErrDataDropped = memorylimiter.ErrDataDropped
)

type memoryLimiterProcessor struct {
	ml     *memorylimiter.MemoryLimiter
	next   consumer.Consumer
	obsrep *obsreport.MemoryLimiter
	policy string
	wait   time.Duration
}

func newMemoryLimiterProcessor(set processor.Settings, cfg *Config, ml *memorylimiter.MemoryLimiter, next consumer.Consumer) (*memoryLimiterProcessor, error) {
	obsrep, err := obsreport.NewMemoryLimiter(set.TelemetrySettings, set.ID)
	if err != nil {
		return nil, err
	}
	return &memoryLimiterProcessor{
		ml:     ml,
		next:   next,
		obsrep: obsrep,
		policy: cfg.SoftLimitPolicy,
		wait:   cfg.SoftLimitWait,
	}, nil
}

func (p *memoryLimiterProcessor) Start(ctx context.Context, host component.Host) error {
	return p.ml.Start(ctx, host)
}

func (p *memoryLimiterProcessor) Shutdown(ctx context.Context) error {
	return p.ml.Shutdown(ctx)
}

func (p *memoryLimiterProcessor) Capabilities() consumer.Capabilities {
	return consumer.Capabilities{MutatesData: false}
}

func (p *memoryLimiterProcessor) Consume(ctx context.Context, batch pdata.Batch) error {
	decision := p.ml.CheckAdmission()
	if decision == memorylimiter.DecisionSoftReject && p.policy == PolicyWait {
		decision = p.waitForHeadroom(ctx)
	}

	switch decision {
	case memorylimiter.DecisionSoftReject:
		p.obsrep.ItemsRefused(ctx, batch.ItemCount())
		return ErrDataRefused
	case memorylimiter.DecisionHardReject:
		p.obsrep.ItemsDropped(ctx, batch.ItemCount())
		p.obsrep.BatchesDropped(ctx, 1)
		return consumererror.NewPermanent(ErrDataDropped)
	}
	return p.next.Consume(ctx, batch)
}

// waitForHeadroom blocks until the limiter leaves the soft-reject state, the
// wait budget runs out or the caller's context is done. Re-checks follow the
// limiter's own refresh interval: nothing changes between refreshes.
func (p *memoryLimiterProcessor) waitForHeadroom(ctx context.Context) memorylimiter.Decision {
	deadline := time.NewTimer(p.wait)
	defer deadline.Stop()
	recheck := time.NewTicker(p.ml.CheckInterval())
	defer recheck.Stop()

	for {
		select {
		case <-ctx.Done():
			return memorylimiter.DecisionSoftReject
		case <-deadline.C:
			return memorylimiter.DecisionSoftReject
		case <-recheck.C:
			if d := p.ml.CheckAdmission(); d != memorylimiter.DecisionSoftReject {
				return d
			}
		}
	}
}
