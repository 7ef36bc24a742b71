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

// Package pipeline is the concrete Pipeline: it implements apis/pipeline
// .Pipeline and apis/pipeline/pcontext.Handle, carrying a Config through
// the full Init -> Start -> {Process, Send, FlushBatch} -> Stop lifecycle
// (spec.md §4.6).
package pipeline

import (
	"context"
	"sync"

	apipeline "dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/metrics"
	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
	arouter "dirpx.dev/dlog/apis/router"
	asink "dirpx.dev/dlog/apis/sink"
)

// Pipeline is the executable form of a Config. Its plugin lists are fixed
// once Init completes; only Init and Stop mutate the struct itself, so
// Process/Send run lock-free at this level (spec.md §5 shared-resource
// policy) — each goroutine only ever reads the slices below after Init
// has published them.
type Pipeline struct {
	deps Deps
	cfg  apipeline.Config

	inputs     []abi.Input
	processors []abi.Processor
	sinks      []asink.Sink
	router     arouter.Router

	pctx            *pcontext.Context
	processQueueKey queue.Key
	sinkKeys        []queue.Key

	metrics metrics.Counters

	extWithInputID    string
	extWithoutInputID string
	extWithInputLoaded    bool
	extWithoutInputLoaded bool

	mu      sync.Mutex
	started bool
	stopped bool

	stopDisabled map[string]bool
}

var _ apipeline.Pipeline = (*Pipeline)(nil)
var _ pcontext.Handle = (*Pipeline)(nil)

// Name returns the pipeline's configuration name.
func (p *Pipeline) Name() string { return p.cfg.Name }

// PipelineName implements pcontext.Handle.
func (p *Pipeline) PipelineName() string { return p.cfg.Name }

// ProcessQueueKey implements pcontext.Handle.
func (p *Pipeline) ProcessQueueKey() queue.Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processQueueKey
}

// Reprocess implements pcontext.Handle: it re-runs Process/Send for
// groups a plugin produced out of band (e.g. replaying a batch after a
// recoverable failure) without the caller needing to touch the process
// queue directly.
func (p *Pipeline) Reprocess(ctx context.Context, groups []*record.EventGroup, inputIndex int) error {
	processed, err := p.Process(ctx, groups, inputIndex)
	if err != nil {
		return err
	}
	if len(processed) == 0 {
		return nil
	}
	_, err = p.Send(ctx, processed)
	return err
}
