// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package memorylimiterprocessor // import "github.com/signalpipe/signalpipe/processor/memorylimiterprocessor"

import (
	"context"
	"sync"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/internal/memorylimiter"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/processor"
)

var componentType = component.MustNewType("memory_limiter")

type factory struct {
	// memoryLimiters stores the created limiters per config so that the
	// processors of all pipelines using one configured memory_limiter
	// share a single budget. The limiter refcounts Start/Shutdown.
	lock           sync.Mutex
	memoryLimiters map[component.Config]*memorylimiter.MemoryLimiter
}

// NewFactory creates a factory for the memory limiter processor. Processors
// created from the same configuration instance share one limiter core.
func NewFactory() processor.Factory {
	return &factory{
		memoryLimiters: map[component.Config]*memorylimiter.MemoryLimiter{},
	}
}

func (f *factory) Type() component.Type { return componentType }

func (f *factory) CreateDefaultConfig() component.Config {
	return NewDefaultConfig()
}

func (f *factory) Create(_ context.Context, set processor.Settings, cfg component.Config, _ pdata.Signal, next consumer.Consumer) (processor.Processor, error) {
	pCfg := cfg.(*Config)
	ml, err := f.getMemoryLimiter(set, pCfg)
	if err != nil {
		return nil, err
	}
	return newMemoryLimiterProcessor(set, pCfg, ml, next)
}

func (f *factory) getMemoryLimiter(set processor.Settings, cfg *Config) (*memorylimiter.MemoryLimiter, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if ml, ok := f.memoryLimiters[cfg]; ok {
		return ml, nil
	}
	ml, err := memorylimiter.NewMemoryLimiter(cfg.Config, set.Logger)
	if err != nil {
		return nil, err
	}
	f.memoryLimiters[cfg] = ml
	return ml, nil
}
