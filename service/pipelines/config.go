// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipelines holds the configuration of the pipeline map: which
// receivers feed which processor chain and which exporters, keyed by
// pipeline ID.
package pipelines // import "github.com/signalpipe/signalpipe/service/pipelines"

import (
	"errors"
	"fmt"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/pipeline"
)

var (
	errMissingServicePipelines         = errors.New("service must have at least one pipeline")
	errMissingServicePipelineReceivers = errors.New("must have at least one receiver")
	errMissingServicePipelineExporters = errors.New("must have at least one exporter")
)

// Config is the map of pipeline IDs to pipeline configurations.
type Config map[pipeline.ID]*PipelineConfig

// Validate checks that every pipeline has at least one receiver and one
// exporter and references each component at most once.
func (cfg Config) Validate() error {
	if len(cfg) == 0 {
		return errMissingServicePipelines
	}
	for pipelineID, pipelineCfg := range cfg {
		if err := pipelineCfg.Validate(); err != nil {
			return fmt.Errorf("pipeline %q: %w", pipelineID.String(), err)
		}
	}
	return nil
}

// PipelineConfig defines the configuration of a single pipeline.
type PipelineConfig struct {
	Receivers  []component.ID `mapstructure:"receivers"`
	Processors []component.ID `mapstructure:"processors"`
	Exporters  []component.ID `mapstructure:"exporters"`
}

// Validate checks if the configuration is valid.
func (cfg *PipelineConfig) Validate() error {
	if len(cfg.Receivers) == 0 {
		return errMissingServicePipelineReceivers
	}
	if len(cfg.Exporters) == 0 {
		return errMissingServicePipelineExporters
	}
	if dup, ok := findDuplicate(cfg.Receivers); ok {
		return fmt.Errorf("references receiver %q multiple times", dup.String())
	}
	if dup, ok := findDuplicate(cfg.Processors); ok {
		return fmt.Errorf("references processor %q multiple times", dup.String())
	}
	if dup, ok := findDuplicate(cfg.Exporters); ok {
		return fmt.Errorf("references exporter %q multiple times", dup.String())
	}
	return nil
}

func findDuplicate(ids []component.ID) (component.ID, bool) {
	seen := make(map[component.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return component.ID{}, false
}
