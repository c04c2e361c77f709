// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package service // import "github.com/signalpipe/signalpipe/service"

import (
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/service/pipelines"
	"github.com/signalpipe/signalpipe/service/telemetry"
)

const defaultShutdownTimeout = 30 * time.Second

// Config defines the whole engine configuration: every configured component
// instance plus the pipeline map wiring them together.
type Config struct {
	// Receivers is a map of ComponentID to Receivers.
	Receivers map[component.ID]component.Config

	// Processors is a map of ComponentID to Processors.
	Processors map[component.ID]component.Config

	// Exporters is a map of ComponentID to Exporters.
	Exporters map[component.ID]component.Config

	// Pipelines wires the configured components into pipelines.
	Pipelines pipelines.Config

	// Telemetry configures the engine's own logger and metrics.
	Telemetry telemetry.Config

	// ShutdownTimeout bounds the graceful drain on Shutdown when the
	// caller's context carries no deadline.
	ShutdownTimeout time.Duration
}

// Validate checks the whole configuration: every component config must be
// valid and every pipeline must reference only configured components.
func (cfg *Config) Validate() error {
	for recvID, recvCfg := range cfg.Receivers {
		if err := component.ValidateConfig(recvCfg); err != nil {
			return fmt.Errorf("receiver %q has invalid configuration: %w", recvID, err)
		}
	}
	for procID, procCfg := range cfg.Processors {
		if err := component.ValidateConfig(procCfg); err != nil {
			return fmt.Errorf("processor %q has invalid configuration: %w", procID, err)
		}
	}
	for expID, expCfg := range cfg.Exporters {
		if err := component.ValidateConfig(expCfg); err != nil {
			return fmt.Errorf("exporter %q has invalid configuration: %w", expID, err)
		}
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		return fmt.Errorf("service telemetry config is invalid: %w", err)
	}
	if err := cfg.Pipelines.Validate(); err != nil {
		return fmt.Errorf("service pipelines config is invalid: %w", err)
	}

	for pipelineID, pipelineCfg := range cfg.Pipelines {
		for _, recvID := range pipelineCfg.Receivers {
			if _, ok := cfg.Receivers[recvID]; !ok {
				return fmt.Errorf("pipeline %q references receiver %q which is not configured", pipelineID, recvID)
			}
		}
		for _, procID := range pipelineCfg.Processors {
			if _, ok := cfg.Processors[procID]; !ok {
				return fmt.Errorf("pipeline %q references processor %q which is not configured", pipelineID, procID)
			}
		}
		for _, expID := range pipelineCfg.Exporters {
			if _, ok := cfg.Exporters[expID]; !ok {
				return fmt.Errorf("pipeline %q references exporter %q which is not configured", pipelineID, expID)
			}
		}
	}
	return nil
}
