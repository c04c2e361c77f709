// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package graph // import "github.com/signalpipe/signalpipe/service/internal/graph"

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/internal/fanoutconsumer"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/pipeline"
	"github.com/signalpipe/signalpipe/processor"
	"github.com/signalpipe/signalpipe/receiver"
)

const (
	receiverSeed      = "receiver"
	processorSeed     = "processor"
	exporterSeed      = "exporter"
	capabilitiesSeed  = "capabilities"
	fanOutToExporters = "fanout_to_exporters"
)

type nodeID int64

func (n nodeID) ID() int64 {
	return int64(n)
}

func newNodeID(parts ...string) nodeID {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "|")))
	return nodeID(h.Sum64())
}

type consumerNode interface {
	getConsumer() consumer.Consumer
}

// A receiver instance can be shared by multiple pipelines of the same signal.
// Therefore, nodeID is derived from "pipeline signal" and "component ID".
type receiverNode struct {
	nodeID
	componentID  component.ID
	pipelineType pdata.Signal
	component.Component
}

func newReceiverNode(pipelineType pdata.Signal, recvID component.ID) *receiverNode {
	return &receiverNode{
		nodeID:       newNodeID(receiverSeed, pipelineType.String(), recvID.String()),
		componentID:  recvID,
		pipelineType: pipelineType,
	}
}

func (n *receiverNode) buildComponent(ctx context.Context,
	tel component.TelemetrySettings,
	info component.BuildInfo,
	builder *receiver.Builder,
	nexts []consumer.Consumer,
) error {
	tel.Logger = tel.Logger.With(
		zap.String("kind", "receiver"),
		zap.String("name", n.componentID.String()),
		zap.String("signal", n.pipelineType.String()))
	set := receiver.Settings{ID: n.componentID, TelemetrySettings: tel, BuildInfo: info}
	var err error
	n.Component, err = builder.Create(ctx, set, n.pipelineType, fanoutconsumer.NewBatches(nexts))
	if err != nil {
		return fmt.Errorf("failed to create %q receiver for signal %q: %w", set.ID, n.pipelineType, err)
	}
	return nil
}

var _ consumerNode = (*processorNode)(nil)

// Every processor instance is unique to one pipeline.
// Therefore, nodeID is derived from "pipeline ID" and "component ID".
type processorNode struct {
	nodeID
	componentID component.ID
	pipelineID  pipeline.ID
	component.Component
}

func newProcessorNode(pipelineID pipeline.ID, procID component.ID) *processorNode {
	return &processorNode{
		nodeID:      newNodeID(processorSeed, pipelineID.String(), procID.String()),
		componentID: procID,
		pipelineID:  pipelineID,
	}
}

func (n *processorNode) getConsumer() consumer.Consumer {
	return n.Component.(consumer.Consumer)
}

func (n *processorNode) buildComponent(ctx context.Context,
	tel component.TelemetrySettings,
	info component.BuildInfo,
	builder *processor.Builder,
	next consumer.Consumer,
) error {
	tel.Logger = tel.Logger.With(
		zap.String("kind", "processor"),
		zap.String("name", n.componentID.String()),
		zap.String("pipeline", n.pipelineID.String()))
	set := processor.Settings{ID: n.componentID, TelemetrySettings: tel, BuildInfo: info}
	var err error
	n.Component, err = builder.Create(ctx, set, n.pipelineID.Signal(), next)
	if err != nil {
		return fmt.Errorf("failed to create %q processor for pipeline %q: %w", set.ID, n.pipelineID, err)
	}
	return nil
}

var _ consumerNode = (*exporterNode)(nil)

// An exporter instance can be shared by multiple pipelines of the same
// signal. Therefore, nodeID is derived from "pipeline signal" and "component
// ID".
type exporterNode struct {
	nodeID
	componentID  component.ID
	pipelineType pdata.Signal
	component.Component
}

func newExporterNode(pipelineType pdata.Signal, exprID component.ID) *exporterNode {
	return &exporterNode{
		nodeID:       newNodeID(exporterSeed, pipelineType.String(), exprID.String()),
		componentID:  exprID,
		pipelineType: pipelineType,
	}
}

func (n *exporterNode) getConsumer() consumer.Consumer {
	return n.Component.(consumer.Consumer)
}

func (n *exporterNode) buildComponent(ctx context.Context,
	tel component.TelemetrySettings,
	info component.BuildInfo,
	builder *exporter.Builder,
) error {
	tel.Logger = tel.Logger.With(
		zap.String("kind", "exporter"),
		zap.String("name", n.componentID.String()),
		zap.String("signal", n.pipelineType.String()))
	set := exporter.Settings{ID: n.componentID, TelemetrySettings: tel, BuildInfo: info}
	var err error
	n.Component, err = builder.Create(ctx, set, n.pipelineType)
	if err != nil {
		return fmt.Errorf("failed to create %q exporter for signal %q: %w", set.ID, n.pipelineType, err)
	}
	return nil
}

var _ consumerNode = (*capabilitiesNode)(nil)

// Each pipeline has one capabilitiesNode at its entry. It announces the
// aggregate capabilities of the pipeline to the receivers feeding it, which
// is what tells the entry fan-out whether this pipeline needs its own clone
// of shared data.
type capabilitiesNode struct {
	nodeID
	pipelineID pipeline.ID
	consumer.Consumer
}

func newCapabilitiesNode(pipelineID pipeline.ID) *capabilitiesNode {
	return &capabilitiesNode{
		nodeID:     newNodeID(capabilitiesSeed, pipelineID.String()),
		pipelineID: pipelineID,
	}
}

func (n *capabilitiesNode) getConsumer() consumer.Consumer {
	return n.Consumer
}

// capabilitiesConsumer overrides the capabilities of the consumer it wraps.
type capabilitiesConsumer struct {
	consumer.Consumer
	capabilities consumer.Capabilities
}

func (c capabilitiesConsumer) Capabilities() consumer.Capabilities {
	return c.capabilities
}

var _ consumerNode = (*fanOutNode)(nil)

// Each pipeline has one fanOutNode between its processor chain and its
// exporters. It dispatches each batch to every exporter concurrently and
// keeps their failure domains isolated.
type fanOutNode struct {
	nodeID
	pipelineID pipeline.ID
	*fanoutconsumer.Exporters
}

func newFanOutNode(pipelineID pipeline.ID) *fanOutNode {
	return &fanOutNode{
		nodeID:     newNodeID(fanOutToExporters, pipelineID.String()),
		pipelineID: pipelineID,
	}
}

func (n *fanOutNode) getConsumer() consumer.Consumer {
	return n.Exporters
}
