// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph assembles the configured pipelines into a directed graph of
// component instances, builds them in dependency order and drives their
// lifecycle: downstream components start before upstream components and stop
// after them, so data can always drain toward the exporters.
package graph // import "github.com/signalpipe/signalpipe/service/internal/graph"

import (
	"context"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/consumer"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/internal/fanoutconsumer"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/pipeline"
	"github.com/signalpipe/signalpipe/processor"
	"github.com/signalpipe/signalpipe/receiver"
	"github.com/signalpipe/signalpipe/service/pipelines"
)

// Settings holds configuration for building the pipeline graph.
type Settings struct {
	Telemetry component.TelemetrySettings
	BuildInfo component.BuildInfo

	ReceiverBuilder  *receiver.Builder
	ProcessorBuilder *processor.Builder
	ExporterBuilder  *exporter.Builder

	PipelineConfigs pipelines.Config
}

// Graph holds all component instances as nodes, with directed edges
// indicating data flow.
type Graph struct {
	componentGraph *simple.DirectedGraph

	// Keep track of how nodes relate to pipelines, so we can declare
	// edges in the graph.
	pipelines map[pipeline.ID]*pipelineNodes
}

// A node-based representation of a pipeline configuration.
type pipelineNodes struct {
	// Receivers may be shared between pipelines, so they are stored by
	// node ID.
	receivers map[int64]*receiverNode

	// The node to which receivers emit. Passes through to the first
	// processor.
	*capabilitiesNode

	// The order of processors is part of the pipeline semantics,
	// therefore a slice.
	processors []*processorNode

	// Emits to exporters.
	*fanOutNode

	// Exporters may be shared between pipelines, so they are stored by
	// node ID.
	exporters map[int64]*exporterNode
}

// Build creates the graph for the given pipeline configurations and
// instantiates every component. Any resolution or construction failure
// aborts the build.
func Build(ctx context.Context, set Settings) (*Graph, error) {
	g := &Graph{
		componentGraph: simple.NewDirectedGraph(),
		pipelines:      make(map[pipeline.ID]*pipelineNodes, len(set.PipelineConfigs)),
	}
	for pipelineID := range set.PipelineConfigs {
		g.pipelines[pipelineID] = &pipelineNodes{
			receivers: make(map[int64]*receiverNode),
			exporters: make(map[int64]*exporterNode),
		}
	}
	g.createNodes(set)
	g.createEdges()
	return g, g.buildComponents(ctx, set)
}

// createNodes creates a node for each instance of a component and adds it to
// the graph. Receivers and exporters referenced by multiple pipelines of the
// same signal resolve to a single shared node.
func (g *Graph) createNodes(set Settings) {
	for pipelineID, pipelineCfg := range set.PipelineConfigs {
		pipe := g.pipelines[pipelineID]
		for _, recvID := range pipelineCfg.Receivers {
			rcvrNode := g.createReceiver(pipelineID.Signal(), recvID)
			pipe.receivers[rcvrNode.ID()] = rcvrNode
		}

		pipe.capabilitiesNode = newCapabilitiesNode(pipelineID)
		g.componentGraph.AddNode(pipe.capabilitiesNode)

		for _, procID := range pipelineCfg.Processors {
			procNode := newProcessorNode(pipelineID, procID)
			g.componentGraph.AddNode(procNode)
			pipe.processors = append(pipe.processors, procNode)
		}

		pipe.fanOutNode = newFanOutNode(pipelineID)
		g.componentGraph.AddNode(pipe.fanOutNode)

		for _, exprID := range pipelineCfg.Exporters {
			expNode := g.createExporter(pipelineID.Signal(), exprID)
			pipe.exporters[expNode.ID()] = expNode
		}
	}
}

func (g *Graph) createReceiver(pipelineType pdata.Signal, recvID component.ID) *receiverNode {
	rcvrNode := newReceiverNode(pipelineType, recvID)
	if node := g.componentGraph.Node(rcvrNode.ID()); node != nil {
		return node.(*receiverNode)
	}
	g.componentGraph.AddNode(rcvrNode)
	return rcvrNode
}

func (g *Graph) createExporter(pipelineType pdata.Signal, exprID component.ID) *exporterNode {
	expNode := newExporterNode(pipelineType, exprID)
	if node := g.componentGraph.Node(expNode.ID()); node != nil {
		return node.(*exporterNode)
	}
	g.componentGraph.AddNode(expNode)
	return expNode
}

func (g *Graph) createEdges() {
	for _, pg := range g.pipelines {
		for _, rcvrNode := range pg.receivers {
			g.componentGraph.SetEdge(g.componentGraph.NewEdge(rcvrNode, pg.capabilitiesNode))
		}

		var from, to graph.Node
		from = pg.capabilitiesNode
		for _, procNode := range pg.processors {
			to = procNode
			g.componentGraph.SetEdge(g.componentGraph.NewEdge(from, to))
			from = procNode
		}
		to = pg.fanOutNode
		g.componentGraph.SetEdge(g.componentGraph.NewEdge(from, to))

		for _, expNode := range pg.exporters {
			g.componentGraph.SetEdge(g.componentGraph.NewEdge(pg.fanOutNode, expNode))
		}
	}
}

// buildComponents builds every node in reverse topological order, so each
// component is created after the consumer it feeds.
func (g *Graph) buildComponents(ctx context.Context, set Settings) error {
	nodes, err := topo.Sort(g.componentGraph)
	if err != nil {
		return err
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		switch n := nodes[i].(type) {
		case *exporterNode:
			err = n.buildComponent(ctx, set.Telemetry, set.BuildInfo, set.ExporterBuilder)
		case *fanOutNode:
			exps := make(map[component.ID]consumer.Consumer)
			for _, expNode := range g.pipelines[n.pipelineID].exporters {
				exps[expNode.componentID] = expNode.getConsumer()
			}
			n.Exporters = fanoutconsumer.NewExporters(exps, set.Telemetry.Logger)
		case *processorNode:
			err = n.buildComponent(ctx, set.Telemetry, set.BuildInfo, set.ProcessorBuilder, g.nextConsumers(n.ID())[0])
		case *capabilitiesNode:
			// The pipeline mutates shared data if any of its processors
			// or exporters does.
			pipe := g.pipelines[n.pipelineID]
			capabilities := consumer.Capabilities{
				MutatesData: pipe.fanOutNode.getConsumer().Capabilities().MutatesData,
			}
			for _, procNode := range pipe.processors {
				capabilities.MutatesData = capabilities.MutatesData || procNode.getConsumer().Capabilities().MutatesData
			}
			n.Consumer = capabilitiesConsumer{
				Consumer:     g.nextConsumers(n.ID())[0],
				capabilities: capabilities,
			}
		case *receiverNode:
			err = n.buildComponent(ctx, set.Telemetry, set.BuildInfo, set.ReceiverBuilder, g.nextConsumers(n.ID()))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) nextConsumers(nodeID int64) []consumer.Consumer {
	nextNodes := g.componentGraph.From(nodeID)
	nexts := make([]consumer.Consumer, 0, nextNodes.Len())
	for nextNodes.Next() {
		nexts = append(nexts, nextNodes.Node().(consumerNode).getConsumer())
	}
	return nexts
}

// StartAll starts all components in reverse topological order so that
// downstream components are started before upstream components. This ensures
// that each component's consumer is ready to consume.
func (g *Graph) StartAll(ctx context.Context, host component.Host) error {
	nodes, err := topo.Sort(g.componentGraph)
	if err != nil {
		return err
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		comp, ok := nodes[i].(component.Component)
		if !ok {
			// Skip capabilities and fanout nodes.
			continue
		}
		if compErr := comp.Start(ctx, host); compErr != nil {
			return compErr
		}
	}
	return nil
}

// ShutdownAll stops all components in topological order so that upstream
// components are stopped before downstream components. This ensures that
// each component has a chance to drain to its consumer before the consumer
// is stopped.
func (g *Graph) ShutdownAll(ctx context.Context) error {
	nodes, err := topo.Sort(g.componentGraph)
	if err != nil {
		return err
	}
	var errs error
	for i := 0; i < len(nodes); i++ {
		comp, ok := nodes[i].(component.Component)
		if !ok {
			// Skip capabilities and fanout nodes.
			continue
		}
		errs = multierr.Append(errs, comp.Shutdown(ctx))
	}
	return errs
}

// ReceiverComponent returns the shared receiver instance created for the
// given ID and signal, for callers that push data through an in-process
// receiver.
func (g *Graph) ReceiverComponent(signal pdata.Signal, id component.ID) (component.Component, bool) {
	node := g.componentGraph.Node(newReceiverNode(signal, id).ID())
	if rcvrNode, ok := node.(*receiverNode); ok {
		return rcvrNode.Component, true
	}
	return nil, false
}
