// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package memorylimiter implements the admission-control gate protecting the
// process from out-of-memory termination. It samples process memory usage on
// a fixed interval and classifies every admission request into accept,
// soft-reject (apply backpressure) or hard-reject (drop).
package memorylimiter // import "github.com/signalpipe/signalpipe/internal/memorylimiter"

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/internal/iruntime"
)

const mibBytes = 1024 * 1024

var (
	// ErrDataRefused is returned to callers when data is refused because the
	// soft memory limit is exceeded. Callers should slow down and retry.
	ErrDataRefused = errors.New("data refused due to high memory usage")

	// ErrDataDropped is returned to callers when data is dropped because the
	// hard memory limit is exceeded. The drop is deliberate and counted.
	ErrDataDropped = errors.New("data dropped due to memory pressure above hard limit")

	// GetMemoryFn and ReadMemStatsFn make the memory readers overridable by tests.
	GetMemoryFn    = iruntime.TotalMemory
	ReadMemStatsFn = runtime.ReadMemStats
)

// Decision is the outcome of one admission check.
type Decision int32

const (
	// DecisionAccept admits the data.
	DecisionAccept Decision = iota
	// DecisionSoftReject refuses the data; the caller should apply
	// backpressure and retry rather than drop.
	DecisionSoftReject
	// DecisionHardReject refuses the data; the caller must drop it and count
	// the drop.
	DecisionHardReject
)

// String returns the name of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionSoftReject:
		return "soft_reject"
	case DecisionHardReject:
		return "hard_reject"
	}
	return "unknown"
}

// MemoryState is a snapshot of the sampled process memory against the
// resolved limits.
type MemoryState struct {
	// Used is the last sampled heap allocation in bytes.
	Used uint64
	// SoftLimit is the admission limit in bytes.
	SoftLimit uint64
	// HardLimit is SoftLimit plus the spike headroom, in bytes.
	HardLimit uint64
	// RefreshedAt is when Used was last sampled.
	RefreshedAt time.Time
}

// MemoryLimiter samples memory usage on a timer and answers admission checks
// from the last sample. One instance may be shared by any number of
// pipelines; the budget it enforces is process-wide by construction.
type MemoryLimiter struct {
	usageChecker memUsageChecker

	checkInterval time.Duration
	ticker        *time.Ticker

	decision atomic.Int32

	stateMu sync.Mutex
	state   MemoryState

	minGCIntervalWhenSoftLimited time.Duration
	minGCIntervalWhenHardLimited time.Duration
	lastGCDone                   time.Time

	// The functions to read the mem values and run GC are references to help
	// with testing different values.
	readMemStatsFn func(m *runtime.MemStats)
	runGCFn        func()

	logger *zap.Logger

	refCounterLock sync.Mutex
	refCounter     int
	waitGroup      sync.WaitGroup
	closed         chan struct{}
}

// NewMemoryLimiter returns a new memory limiter from the given config.
func NewMemoryLimiter(cfg Config, logger *zap.Logger) (*MemoryLimiter, error) {
	usageChecker, err := getMemUsageChecker(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Memory limiter configured",
		zap.Uint64("limit_mib", usageChecker.memAllocLimit/mibBytes),
		zap.Uint64("spike_limit_mib", usageChecker.memSpikeLimit/mibBytes),
		zap.Duration("check_interval", cfg.CheckInterval))

	ml := &MemoryLimiter{
		usageChecker:                 *usageChecker,
		checkInterval:                cfg.CheckInterval,
		ticker:                       time.NewTicker(cfg.CheckInterval),
		minGCIntervalWhenSoftLimited: cfg.MinGCIntervalWhenSoftLimited,
		minGCIntervalWhenHardLimited: cfg.MinGCIntervalWhenHardLimited,
		lastGCDone:                   time.Now(),
		readMemStatsFn:               ReadMemStatsFn,
		runGCFn:                      runtime.GC,
		logger:                       logger,
	}
	ml.setState(0)
	return ml, nil
}

// Start launches the sampling goroutine. Start and Shutdown are reference
// counted so a shared limiter keeps sampling until its last user is done.
func (ml *MemoryLimiter) Start(_ context.Context, _ component.Host) error {
	ml.refCounterLock.Lock()
	defer ml.refCounterLock.Unlock()

	ml.refCounter++
	if ml.refCounter == 1 {
		ml.closed = make(chan struct{})
		ml.waitGroup.Add(1)
		go func() {
			defer ml.waitGroup.Done()

			for {
				select {
				case <-ml.ticker.C:
				case <-ml.closed:
					return
				}
				ml.CheckMemLimits()
			}
		}()
	}
	return nil
}

// Shutdown stops monitoring once the last user has shut down.
func (ml *MemoryLimiter) Shutdown(context.Context) error {
	ml.refCounterLock.Lock()
	defer ml.refCounterLock.Unlock()

	switch ml.refCounter {
	case 0:
		return nil
	case 1:
		ml.ticker.Stop()
		close(ml.closed)
		ml.waitGroup.Wait()
	}
	ml.refCounter--
	return nil
}

// CheckAdmission returns the decision for admitting new data, based on the
// last memory sample. Staleness up to one check interval is accepted to avoid
// sampling on every admission.
func (ml *MemoryLimiter) CheckAdmission() Decision {
	return Decision(ml.decision.Load())
}

// CheckInterval returns the configured sampling interval.
func (ml *MemoryLimiter) CheckInterval() time.Duration {
	return ml.checkInterval
}

// MemoryState returns the last sampled memory snapshot.
func (ml *MemoryLimiter) MemoryState() MemoryState {
	ml.stateMu.Lock()
	defer ml.stateMu.Unlock()
	return ml.state
}

func (ml *MemoryLimiter) setState(used uint64) {
	ml.stateMu.Lock()
	defer ml.stateMu.Unlock()
	ml.state = MemoryState{
		Used:        used,
		SoftLimit:   ml.usageChecker.memAllocLimit,
		HardLimit:   ml.usageChecker.memAllocLimit + ml.usageChecker.memSpikeLimit,
		RefreshedAt: time.Now(),
	}
}

func getMemUsageChecker(cfg Config, logger *zap.Logger) (*memUsageChecker, error) {
	if cfg.MemoryLimitMiB != 0 {
		return newFixedMemUsageChecker(uint64(cfg.MemoryLimitMiB)*mibBytes, uint64(cfg.MemorySpikeLimitMiB)*mibBytes), nil
	}
	totalMemory, err := GetMemoryFn()
	if err != nil {
		return nil, fmt.Errorf("failed to get total memory, use fixed memory settings (limit_mib): %w", err)
	}
	logger.Info("Using percentage memory limiter",
		zap.Uint64("total_memory_mib", totalMemory/mibBytes),
		zap.Uint32("limit_percentage", cfg.MemoryLimitPercentage),
		zap.Uint32("spike_limit_percentage", cfg.MemorySpikePercentage))
	return newPercentageMemUsageChecker(totalMemory, uint64(cfg.MemoryLimitPercentage), uint64(cfg.MemorySpikePercentage)), nil
}

func (ml *MemoryLimiter) readMemStats() *runtime.MemStats {
	ms := &runtime.MemStats{}
	ml.readMemStatsFn(ms)
	return ms
}

func memstatToZapField(ms *runtime.MemStats) zap.Field {
	return zap.Uint64("cur_mem_mib", ms.Alloc/mibBytes)
}

func (ml *MemoryLimiter) doGCandReadMemStats() *runtime.MemStats {
	ml.runGCFn()
	ml.lastGCDone = time.Now()
	ms := ml.readMemStats()
	ml.logger.Info("Memory usage after GC.", memstatToZapField(ms))
	return ms
}

// CheckMemLimits samples current memory usage, forces a GC when a limit has
// been exceeded and the last GC is long enough ago, and publishes the
// admission decision for the next interval.
func (ml *MemoryLimiter) CheckMemLimits() {
	ms := ml.readMemStats()

	ml.logger.Debug("Currently used memory.", memstatToZapField(ms))

	switch {
	case ml.usageChecker.aboveHardLimit(ms):
		if time.Since(ml.lastGCDone) > ml.minGCIntervalWhenHardLimited {
			ml.logger.Warn("Memory usage is above hard limit. Forcing a GC.", memstatToZapField(ms))
			ms = ml.doGCandReadMemStats()
		}
	case ml.usageChecker.aboveSoftLimit(ms):
		if time.Since(ml.lastGCDone) > ml.minGCIntervalWhenSoftLimited {
			ml.logger.Info("Memory usage is above soft limit. Forcing a GC.", memstatToZapField(ms))
			ms = ml.doGCandReadMemStats()
		}
	}

	// Reclassify after a possible GC.
	next := DecisionAccept
	switch {
	case ml.usageChecker.aboveHardLimit(ms):
		next = DecisionHardReject
	case ml.usageChecker.aboveSoftLimit(ms):
		next = DecisionSoftReject
	}

	prev := Decision(ml.decision.Swap(int32(next)))
	ml.setState(ms.Alloc)

	if prev == next {
		return
	}
	switch next {
	case DecisionAccept:
		ml.logger.Info("Memory usage back within limits. Resuming normal operation.", memstatToZapField(ms))
	case DecisionSoftReject:
		ml.logger.Warn("Memory usage is above soft limit. Refusing data.", memstatToZapField(ms))
	case DecisionHardReject:
		ml.logger.Warn("Memory usage is above hard limit. Dropping data.", memstatToZapField(ms))
	}
}

type memUsageChecker struct {
	// memAllocLimit is the soft limit; memAllocLimit+memSpikeLimit is the
	// hard limit.
	memAllocLimit uint64
	memSpikeLimit uint64
}

func (d memUsageChecker) aboveSoftLimit(ms *runtime.MemStats) bool {
	return ms.Alloc >= d.memAllocLimit
}

func (d memUsageChecker) aboveHardLimit(ms *runtime.MemStats) bool {
	return ms.Alloc >= d.memAllocLimit+d.memSpikeLimit
}

func newFixedMemUsageChecker(memAllocLimit, memSpikeLimit uint64) *memUsageChecker {
	if memSpikeLimit == 0 {
		// If spike limit is unspecified use 20% of the soft limit.
		memSpikeLimit = memAllocLimit / 5
	}
	return &memUsageChecker{memAllocLimit: memAllocLimit, memSpikeLimit: memSpikeLimit}
}

func newPercentageMemUsageChecker(totalMemory, percentageLimit, percentageSpike uint64) *memUsageChecker {
	return newFixedMemUsageChecker(percentageLimit*totalMemory/100, percentageSpike*totalMemory/100)
}
