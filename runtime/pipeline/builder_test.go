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
	"testing"

	"github.com/stretchr/testify/require"

	apipeline "dirpx.dev/dlog/apis/pipeline"
)

func TestBuild_RejectsEmptyName(t *testing.T) {
	b := newTestBuilder(t, newTestRegistries())
	_, err := b.Build(context.Background(), apipeline.Config{})
	require.Error(t, err)
}

func TestInit_MixedAckHomogeneityRollsBackEveryResolvedPlugin(t *testing.T) {
	reg := newTestRegistries()
	in1 := &fakeInput{name: "in1", supportAck: true, initOK: true}
	in2 := &fakeInput{name: "in2", supportAck: false, initOK: true}
	reg.registerInput("ack", in1)
	reg.registerInput("noack", in2)
	s := &fakeSink{name: "s", key: 1, initOK: true}
	reg.registerSink("fake", s)

	b := newTestBuilder(t, reg)
	cfg := apipeline.Config{
		Name: "mixed",
		Inputs: []apipeline.PluginEntry{
			{Type: "ack", Name: "in1"},
			{Type: "noack", Name: "in2"},
		},
		Sinks: []apipeline.PluginEntry{{Type: "fake", Name: "s"}},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.Error(t, err)
	require.False(t, ok)
	require.True(t, in1.wasStopped(), "every already-resolved input must be rolled back on a later Init failure")
	require.True(t, s.stopped, "every already-resolved sink must be rolled back on a later Init failure")
}

func TestInit_DuplicateSinkQueueKeyRejected(t *testing.T) {
	reg := newTestRegistries()
	sA := &fakeSink{name: "a", key: 7, initOK: true}
	sB := &fakeSink{name: "b", key: 7, initOK: true}
	reg.registerSink("fakeA", sA)
	reg.registerSink("fakeB", sB)

	b := newTestBuilder(t, reg)
	cfg := apipeline.Config{
		Name: "dup",
		Sinks: []apipeline.PluginEntry{
			{Type: "fakeA", Name: "a"},
			{Type: "fakeB", Name: "b"},
		},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestInit_ExactlyOnceRejectsNonFileTailingInput(t *testing.T) {
	reg := newTestRegistries()
	in := &fakeInput{name: "in", supportAck: true, initOK: true, fileTailing: false}
	s := &fakeSink{name: "s", key: 1, initOK: true, canonical: true}
	reg.registerInput("fake", in)
	reg.registerSink("fakesink", s)

	b := newTestBuilder(t, reg)
	cfg := apipeline.Config{
		Name:        "eo",
		ExactlyOnce: true,
		Inputs:      []apipeline.PluginEntry{{Type: "fake", Name: "in"}},
		Sinks:       []apipeline.PluginEntry{{Type: "fakesink", Name: "s"}},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestInit_ExactlyOnceRejectsNonCanonicalSink(t *testing.T) {
	reg := newTestRegistries()
	in := &fakeInput{name: "in", supportAck: true, initOK: true, fileTailing: true}
	s := &fakeSink{name: "s", key: 1, initOK: true, canonical: false}
	reg.registerInput("fake", in)
	reg.registerSink("fakesink", s)

	b := newTestBuilder(t, reg)
	cfg := apipeline.Config{
		Name:        "eo2",
		ExactlyOnce: true,
		Inputs:      []apipeline.PluginEntry{{Type: "fake", Name: "in"}},
		Sinks:       []apipeline.PluginEntry{{Type: "fakesink", Name: "s"}},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestInit_ExactlyOnceAcceptsFileTailingInputAndCanonicalSink(t *testing.T) {
	reg := newTestRegistries()
	in := &fakeInput{name: "in", supportAck: true, initOK: true, fileTailing: true}
	s := &fakeSink{name: "s", key: 1, initOK: true, canonical: true}
	reg.registerInput("fake", in)
	reg.registerSink("fakesink", s)

	b := newTestBuilder(t, reg)
	cfg := apipeline.Config{
		Name:        "eo3",
		ExactlyOnce: true,
		Inputs:      []apipeline.PluginEntry{{Type: "fake", Name: "in"}},
		Sinks:       []apipeline.PluginEntry{{Type: "fakesink", Name: "s"}},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInit_HomogeneousAckInputsGetABoundedProcessQueue(t *testing.T) {
	reg := newTestRegistries()
	in1 := &fakeInput{name: "in1", supportAck: true, initOK: true}
	in2 := &fakeInput{name: "in2", supportAck: true, initOK: true}
	reg.registerInput("a", in1)
	reg.registerInput("b", in2)

	b := newTestBuilder(t, reg)
	cfg := apipeline.Config{
		Name:   "homogeneous",
		Inputs: []apipeline.PluginEntry{{Type: "a", Name: "in1"}, {Type: "b", Name: "in2"}},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInit_UnresolvedPluginTypeDelegatesInsteadOfFailing(t *testing.T) {
	b := newTestBuilder(t, newTestRegistries())
	cfg := apipeline.Config{
		Name:   "delegated",
		Inputs: []apipeline.PluginEntry{{Type: "nonexistent", Name: "in"}},
	}
	p, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	ok, err := p.Init(context.Background())
	require.NoError(t, err)
	require.True(t, ok, "an unresolved plugin type must delegate to the extended runtime rather than fail Init")
}
