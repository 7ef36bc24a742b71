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
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
	aregistry "dirpx.dev/dlog/apis/registry"
	asink "dirpx.dev/dlog/apis/sink"
	"dirpx.dev/dlog/runtime/flush"
	"dirpx.dev/dlog/runtime/queue/keymgr"
	"dirpx.dev/dlog/runtime/queue/processqueue"
	"dirpx.dev/dlog/runtime/queue/sinkqueue"
	runtimeregistry "dirpx.dev/dlog/runtime/registry"
	runtimeextended "dirpx.dev/dlog/runtime/extended"
)

// fakeInput is a minimally configurable abi.Input for exercising Builder
// and Pipeline without a concrete plugin.
type fakeInput struct {
	name            string
	supportAck      bool
	fileTailing     bool
	initOK          bool
	initErr         error
	descriptor      *extended.Descriptor
	innerProcessors []abi.Processor
	stopErr         error
	stopDelay       time.Duration
	onStart         func()

	mu      sync.Mutex
	started bool
	stopped bool
}

func (f *fakeInput) Init(_ context.Context, _ any, _ *pcontext.Context, _ int, out *extended.Descriptor) (bool, error) {
	if f.descriptor != nil {
		*out = *f.descriptor
	}
	return f.initOK, f.initErr
}

func (f *fakeInput) Start(context.Context) error {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
	if f.onStart != nil {
		f.onStart()
	}
	return nil
}

func (f *fakeInput) Stop(_ context.Context, _ bool) error {
	if f.stopDelay > 0 {
		time.Sleep(f.stopDelay)
	}
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	return f.stopErr
}

func (f *fakeInput) Name() string                       { return f.name }
func (f *fakeInput) SupportAck() bool                   { return f.supportAck }
func (f *fakeInput) GetInnerProcessors() []abi.Processor { return f.innerProcessors }
func (f *fakeInput) IsFileTailing() bool                { return f.fileTailing }

func (f *fakeInput) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// fakeProcessor lets tests script exactly what Process returns.
type fakeProcessor struct {
	name   string
	initOK bool
	fn     func(groups []*record.EventGroup) ([]*record.EventGroup, abi.Decision, error)
}

func (f *fakeProcessor) Init(context.Context, any, *pcontext.Context) (bool, error) { return f.initOK, nil }

func (f *fakeProcessor) Process(_ context.Context, groups []*record.EventGroup) ([]*record.EventGroup, abi.Decision, error) {
	if f.fn != nil {
		return f.fn(groups)
	}
	return groups, abi.Continue, nil
}

func (f *fakeProcessor) Name() string { return f.name }

// fakeSink is a minimally configurable asink.Sink.
type fakeSink struct {
	name      string
	key       queue.Key
	canonical bool
	initOK    bool
	initErr   error
	sendFn    func(ctx context.Context, g *record.EventGroup) (bool, error)
	flushOK   bool
	stopErr   error
	stopDelay time.Duration
	onStart   func()

	mu         sync.Mutex
	sent       []*record.EventGroup
	started    bool
	stopped    bool
	stops      int
	flushCalls int
}

func (f *fakeSink) Init(context.Context, any, *pcontext.Context, *extended.Descriptor) (bool, error) {
	return f.initOK, f.initErr
}

func (f *fakeSink) Start(context.Context) error {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
	if f.onStart != nil {
		f.onStart()
	}
	return nil
}

func (f *fakeSink) Stop(_ context.Context, _ bool) error {
	if f.stopDelay > 0 {
		time.Sleep(f.stopDelay)
	}
	f.mu.Lock()
	f.stopped = true
	f.stops++
	f.mu.Unlock()
	return f.stopErr
}

func (f *fakeSink) Send(ctx context.Context, g *record.EventGroup) (bool, error) {
	f.mu.Lock()
	f.sent = append(f.sent, g)
	f.mu.Unlock()
	if f.sendFn != nil {
		return f.sendFn(ctx, g)
	}
	return true, nil
}

func (f *fakeSink) FlushAll(context.Context) (bool, error) {
	f.mu.Lock()
	f.flushCalls++
	f.mu.Unlock()
	return f.flushOK, nil
}

func (f *fakeSink) flushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushCalls
}
func (f *fakeSink) GetQueueKey() queue.Key { return f.key }
func (f *fakeSink) Name() string           { return f.name }
func (f *fakeSink) IsCanonical() bool      { return f.canonical }

func (f *fakeSink) sentGroups() []*record.EventGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*record.EventGroup(nil), f.sent...)
}

func (f *fakeSink) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// testRegistries bundles one fresh registry per plugin kind, so each
// test can register only the fakes it needs under a distinct type name.
type testRegistries struct {
	inputs     aregistry.Registry[abi.Input, any]
	processors aregistry.Registry[abi.Processor, any]
	sinks      aregistry.Registry[asink.Sink, *asink.Specification]
}

func newTestRegistries() *testRegistries {
	return &testRegistries{
		inputs:     runtimeregistry.New[abi.Input, any](),
		processors: runtimeregistry.New[abi.Processor, any](),
		sinks:      runtimeregistry.New[asink.Sink, *asink.Specification](),
	}
}

func (r *testRegistries) registerInput(typ string, in abi.Input) {
	_ = r.inputs.Register(aregistry.Key{Kind: "input", Name: typ},
		aregistry.BuilderFunc[abi.Input, any](func(context.Context, string, any) (abi.Input, error) {
			return in, nil
		}))
}

func (r *testRegistries) registerProcessor(typ string, p abi.Processor) {
	_ = r.processors.Register(aregistry.Key{Kind: "processor", Name: typ},
		aregistry.BuilderFunc[abi.Processor, any](func(context.Context, string, any) (abi.Processor, error) {
			return p, nil
		}))
}

func (r *testRegistries) registerSink(typ string, s asink.Sink) {
	_ = r.sinks.Register(aregistry.Key{Kind: "sink", Name: typ},
		aregistry.BuilderFunc[asink.Sink, *asink.Specification](func(context.Context, string, *asink.Specification) (asink.Sink, error) {
			return s, nil
		}))
}

// newTestBuilder wires a Builder whose registries are the given
// testRegistries and whose queue/flush/extended collaborators are the
// real runtime implementations, so only the plugin layer is faked.
func newTestBuilder(t *testing.T, reg *testRegistries) *Builder {
	sinkQueues := sinkqueue.New()
	deps := Deps{
		Inputs:        reg.inputs,
		Processors:    reg.processors,
		Sinks:         reg.sinks,
		Keys:          keymgr.New(),
		ProcessQueues: processqueue.New(sinkQueues),
		SinkQueues:    sinkQueues,
		Flush:         flush.New(),
		Extended:      runtimeextended.New(),
		Base:          zaptest.NewLogger(t),
	}
	return NewBuilder(deps)
}
