// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/component/componenttest"
	"github.com/signalpipe/signalpipe/exporter"
	"github.com/signalpipe/signalpipe/exporter/debugexporter"
	"github.com/signalpipe/signalpipe/pdata"
	"github.com/signalpipe/signalpipe/pipeline"
	"github.com/signalpipe/signalpipe/processor"
	"github.com/signalpipe/signalpipe/processor/batchprocessor"
	"github.com/signalpipe/signalpipe/receiver"
	"github.com/signalpipe/signalpipe/receiver/directreceiver"
	"github.com/signalpipe/signalpipe/service/pipelines"
)

var (
	directID = component.NewID(component.MustNewType("direct"))
	batchID  = component.NewID(component.MustNewType("batch"))
	debugID  = component.NewID(component.MustNewType("debug"))
)

func newTestSettings(pipelineCfgs pipelines.Config) Settings {
	batchCfg := batchprocessor.NewDefaultConfig()
	batchCfg.Timeout = 10 * time.Millisecond

	return Settings{
		Telemetry: componenttest.NewNopTelemetrySettings(),
		BuildInfo: component.NewDefaultBuildInfo(),
		ReceiverBuilder: receiver.NewBuilder(
			map[component.ID]component.Config{directID: &directreceiver.Config{}},
			map[component.Type]receiver.Factory{directID.Type(): directreceiver.NewFactory()},
		),
		ProcessorBuilder: processor.NewBuilder(
			map[component.ID]component.Config{batchID: batchCfg},
			map[component.Type]processor.Factory{batchID.Type(): batchprocessor.NewFactory()},
		),
		ExporterBuilder: exporter.NewBuilder(
			map[component.ID]component.Config{debugID: &debugexporter.Config{Verbosity: debugexporter.VerbosityBasic}},
			map[component.Type]exporter.Factory{debugID.Type(): debugexporter.NewFactory()},
		),
		PipelineConfigs: pipelineCfgs,
	}
}

func TestBuildStartShutdown(t *testing.T) {
	cfgs := pipelines.Config{
		pipeline.NewID(pdata.SignalTraces): {
			Receivers:  []component.ID{directID},
			Processors: []component.ID{batchID},
			Exporters:  []component.ID{debugID},
		},
	}
	g, err := Build(context.Background(), newTestSettings(cfgs))
	require.NoError(t, err)

	require.NoError(t, g.StartAll(context.Background(), componenttest.NewNopHost()))

	comp, ok := g.ReceiverComponent(pdata.SignalTraces, directID)
	require.True(t, ok)
	recv, ok := comp.(*directreceiver.Receiver)
	require.True(t, ok)

	decision, err := recv.Submit(context.Background(), pdata.NewItem(pdata.SignalTraces, []byte("span"), pdata.NewMap()))
	require.NoError(t, err)
	assert.Equal(t, directreceiver.Accepted, decision)

	require.NoError(t, g.ShutdownAll(context.Background()))
}

func TestSharedReceiverAndExporterNodes(t *testing.T) {
	cfgs := pipelines.Config{
		pipeline.NewID(pdata.SignalTraces): {
			Receivers:  []component.ID{directID},
			Processors: []component.ID{batchID},
			Exporters:  []component.ID{debugID},
		},
		pipeline.NewIDWithName(pdata.SignalTraces, "second"): {
			Receivers:  []component.ID{directID},
			Processors: []component.ID{batchID},
			Exporters:  []component.ID{debugID},
		},
	}
	g, err := Build(context.Background(), newTestSettings(cfgs))
	require.NoError(t, err)

	// One shared receiver, one shared exporter, and per-pipeline
	// capabilities, processor and fanout nodes.
	assert.Equal(t, 8, g.componentGraph.Nodes().Len())

	require.NoError(t, g.StartAll(context.Background(), componenttest.NewNopHost()))
	require.NoError(t, g.ShutdownAll(context.Background()))
}

func TestDistinctNodesAcrossSignals(t *testing.T) {
	cfgs := pipelines.Config{
		pipeline.NewID(pdata.SignalTraces): {
			Receivers: []component.ID{directID},
			Exporters: []component.ID{debugID},
		},
		pipeline.NewID(pdata.SignalLogs): {
			Receivers: []component.ID{directID},
			Exporters: []component.ID{debugID},
		},
	}
	g, err := Build(context.Background(), newTestSettings(cfgs))
	require.NoError(t, err)

	// Different signals never share instances: two receivers, two
	// exporters, plus capabilities and fanout per pipeline.
	assert.Equal(t, 8, g.componentGraph.Nodes().Len())

	require.NoError(t, g.StartAll(context.Background(), componenttest.NewNopHost()))
	require.NoError(t, g.ShutdownAll(context.Background()))
}

func TestPipelineCapabilitiesAggregation(t *testing.T) {
	withProc := pipeline.NewID(pdata.SignalTraces)
	withoutProc := pipeline.NewIDWithName(pdata.SignalTraces, "plain")
	cfgs := pipelines.Config{
		withProc: {
			Receivers:  []component.ID{directID},
			Processors: []component.ID{batchID},
			Exporters:  []component.ID{debugID},
		},
		withoutProc: {
			Receivers: []component.ID{directID},
			Exporters: []component.ID{debugID},
		},
	}
	g, err := Build(context.Background(), newTestSettings(cfgs))
	require.NoError(t, err)

	assert.True(t, g.pipelines[withProc].capabilitiesNode.Capabilities().MutatesData)
	assert.False(t, g.pipelines[withoutProc].capabilitiesNode.Capabilities().MutatesData)
}

func TestBuildIsDeterministic(t *testing.T) {
	cfgs := pipelines.Config{
		pipeline.NewID(pdata.SignalTraces): {
			Receivers:  []component.ID{directID},
			Processors: []component.ID{batchID},
			Exporters:  []component.ID{debugID},
		},
		pipeline.NewID(pdata.SignalLogs): {
			Receivers: []component.ID{directID},
			Exporters: []component.ID{debugID},
		},
	}

	first, err := Build(context.Background(), newTestSettings(cfgs))
	require.NoError(t, err)
	second, err := Build(context.Background(), newTestSettings(cfgs))
	require.NoError(t, err)

	// Two builds of the same topology are structurally equivalent: the
	// same node count, the same pipelines, and per pipeline the same
	// receiver/exporter node identities and processor chain.
	assert.Equal(t, first.componentGraph.Nodes().Len(), second.componentGraph.Nodes().Len())
	require.Len(t, second.pipelines, len(first.pipelines))
	for pid, fp := range first.pipelines {
		sp, ok := second.pipelines[pid]
		require.True(t, ok, "pipeline %s missing from second build", pid)

		require.Len(t, sp.receivers, len(fp.receivers))
		for nodeID := range fp.receivers {
			assert.Contains(t, sp.receivers, nodeID)
		}
		require.Len(t, sp.exporters, len(fp.exporters))
		for nodeID := range fp.exporters {
			assert.Contains(t, sp.exporters, nodeID)
		}
		require.Len(t, sp.processors, len(fp.processors))
		for i := range fp.processors {
			assert.Equal(t, fp.processors[i].componentID, sp.processors[i].componentID)
		}
		assert.Equal(t, fp.capabilitiesNode.Capabilities(), sp.capabilitiesNode.Capabilities())
	}

	require.NoError(t, second.StartAll(context.Background(), componenttest.NewNopHost()))
	require.NoError(t, second.ShutdownAll(context.Background()))
}

func TestBuildFailsFastOnUnknownComponent(t *testing.T) {
	unknownID := component.NewID(component.MustNewType("nosuch"))
	cfgs := pipelines.Config{
		pipeline.NewID(pdata.SignalTraces): {
			Receivers: []component.ID{directID},
			Exporters: []component.ID{unknownID},
		},
	}
	_, err := Build(context.Background(), newTestSettings(cfgs))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not configured")
}
