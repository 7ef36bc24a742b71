/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apipeline "dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/record"
	"dirpx.dev/dlog/apis/router"
	runtimerouter "dirpx.dev/dlog/runtime/router"
)

func tagProcessor(name, key, value string) *fakeProcessor {
	return &fakeProcessor{
		name:   name,
		initOK: true,
		fn: func(groups []*record.EventGroup) ([]*record.EventGroup, abi.Decision, error) {
			for _, g := range groups {
				g.Meta = append(g.Meta, record.Meta{Key: key, Value: value})
			}
			return groups, abi.Continue, nil
		},
	}
}

func buildInitializedPipeline(t *testing.T, cfg apipeline.Config, reg *testRegistries) *Pipeline {
	t.Helper()
	b := newTestBuilder(t, reg)
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)
	ok, err := p.Init(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return p.(*Pipeline)
}

func TestProcess_RunsInnerProcessorsBeforeSharedChain(t *testing.T) {
	reg := newTestRegistries()
	inner := tagProcessor("inner", "order", "inner")
	in := &fakeInput{name: "in", supportAck: true, initOK: true, innerProcessors: []abi.Processor{inner}}
	shared := tagProcessor("shared", "order", "shared")
	reg.registerInput("fake", in)
	reg.registerProcessor("fakeproc", shared)

	cfg := apipeline.Config{
		Name:       "chain",
		Inputs:     []apipeline.PluginEntry{{Type: "fake", Name: "in"}},
		Processors: []apipeline.PluginEntry{{Type: "fakeproc", Name: "shared"}},
	}
	p := buildInitializedPipeline(t, cfg, reg)

	g := record.NewEventGroup()
	out, err := p.Process(context.Background(), []*record.EventGroup{g}, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.Len(t, out[0].Meta, 2)
	require.Equal(t, "inner", out[0].Meta[0].Value, "the input's own inner processors must run before the shared chain")
	require.Equal(t, "shared", out[0].Meta[1].Value)
}

func TestProcess_DropDecisionRemovesGroup(t *testing.T) {
	reg := newTestRegistries()
	dropper := &fakeProcessor{name: "dropper", initOK: true, fn: func(groups []*record.EventGroup) ([]*record.EventGroup, abi.Decision, error) {
		return nil, abi.Drop, nil
	}}
	reg.registerProcessor("drop", dropper)

	cfg := apipeline.Config{
		Name:       "drop",
		Processors: []apipeline.PluginEntry{{Type: "drop", Name: "dropper"}},
	}
	p := buildInitializedPipeline(t, cfg, reg)

	out, err := p.Process(context.Background(), []*record.EventGroup{record.NewEventGroup()}, -1)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestProcess_ProcessorErrorExcludesOnlyThatGroupFromTheBatch(t *testing.T) {
	reg := newTestRegistries()
	calls := 0
	failer := &fakeProcessor{name: "failer", initOK: true, fn: func(groups []*record.EventGroup) ([]*record.EventGroup, abi.Decision, error) {
		calls++
		if calls == 1 {
			return nil, abi.Continue, errors.New("boom on the first group only")
		}
		return groups, abi.Continue, nil
	}}
	reg.registerProcessor("failer", failer)

	cfg := apipeline.Config{
		Name:       "partial-fail",
		Processors: []apipeline.PluginEntry{{Type: "failer", Name: "failer"}},
	}
	p := buildInitializedPipeline(t, cfg, reg)

	groups := []*record.EventGroup{record.NewEventGroup(), record.NewEventGroup()}
	out, err := p.Process(context.Background(), groups, -1)
	require.NoError(t, err)
	require.Len(t, out, 1, "Process runs each group through a processor independently, so an error on one group must not drop the rest of the batch")
}

func TestSend_FanOutCopiesEveryTargetButTheLast(t *testing.T) {
	reg := newTestRegistries()
	sinkA := &fakeSink{name: "a", key: 1, initOK: true}
	sinkB := &fakeSink{name: "b", key: 2, initOK: true}
	reg.registerSink("a", sinkA)
	reg.registerSink("b", sinkB)

	cfg := apipeline.Config{
		Name: "fanout",
		Sinks: []apipeline.PluginEntry{
			{Type: "a", Name: "a"},
			{Type: "b", Name: "b"},
		},
		Router: router.Spec{Entries: []router.Entry{
			{Matcher: runtimerouter.MatchAll{}, SinkIndex: 0},
			{Matcher: runtimerouter.MatchAll{}, SinkIndex: 1},
		}},
	}
	p := buildInitializedPipeline(t, cfg, reg)

	g := record.NewEventGroup()
	ok, err := p.Send(context.Background(), []*record.EventGroup{g})
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, sinkA.sentGroups(), 1)
	require.Len(t, sinkB.sentGroups(), 1)
	require.NotSame(t, g, sinkA.sentGroups()[0], "every target but the last must receive an independent copy")
	require.Same(t, g, sinkB.sentGroups()[0], "the last matched target takes ownership of the original group")
}

func TestSend_RoutingMissSkipsGroupWithoutError(t *testing.T) {
	p := buildInitializedPipeline(t, apipeline.Config{Name: "miss"}, newTestRegistries())
	ok, err := p.Send(context.Background(), []*record.EventGroup{record.NewEventGroup()})
	require.NoError(t, err)
	require.True(t, ok, "a routing miss is not itself a send failure")
}

func TestSend_InvalidSinkIndexCountsAsFailureWithoutAbortingBatch(t *testing.T) {
	reg := newTestRegistries()
	sinkA := &fakeSink{name: "a", key: 1, initOK: true}
	reg.registerSink("a", sinkA)

	cfg := apipeline.Config{
		Name:  "badindex",
		Sinks: []apipeline.PluginEntry{{Type: "a", Name: "a"}},
		Router: router.Spec{Entries: []router.Entry{
			{Matcher: runtimerouter.MatchAll{}, SinkIndex: 0},
			{Matcher: runtimerouter.MatchAll{}, SinkIndex: 99},
		}},
	}
	p := buildInitializedPipeline(t, cfg, reg)

	ok, err := p.Send(context.Background(), []*record.EventGroup{record.NewEventGroup()})
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, sinkA.sentGroups(), 1, "the valid sink index must still receive its send")
}
