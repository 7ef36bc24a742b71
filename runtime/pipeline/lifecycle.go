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
	"time"

	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/field"
	apipeline "dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
)

const (
	stopSoftDeadline = 5 * time.Second
	parkRetryDelay   = 2 * time.Second
	parkMaxAttempts  = 5
)

// parked tracks, across Pipeline instances, which pipeline names carry at
// least one plugin that failed to stop within its soft deadline (spec.md
// §9 Open Question 1). A later Init for the same name is rejected while
// the name remains in this set — each Build call allocates a fresh
// *Pipeline, so the registry has to live at package scope rather than on
// the struct.
var (
	parkedMu sync.Mutex
	parked   = make(map[string]bool)
)

func isParked(name string) bool {
	parkedMu.Lock()
	defer parkedMu.Unlock()
	return parked[name]
}

func park(name string) {
	parkedMu.Lock()
	parked[name] = true
	parkedMu.Unlock()
}

func unpark(name string) {
	parkedMu.Lock()
	delete(parked, name)
	parkedMu.Unlock()
}

// stopWithDeadline runs fn (a plugin's Stop call) and reports whether it
// returned within stopSoftDeadline. fn's own ctx still carries the
// caller's cancellation; the deadline here only bounds how long Stop
// waits before giving up and parking the plugin instead of blocking
// indefinitely (spec.md §4.6 "must not block Stop's return indefinitely").
func stopWithDeadline(ctx context.Context, fn func(ctx context.Context) error) (done bool, err error) {
	result := make(chan error, 1)
	go func() {
		result <- fn(ctx)
	}()
	select {
	case err = <-result:
		return true, err
	case <-time.After(stopSoftDeadline):
		return false, nil
	}
}

// parkAndRetry is spawned for a plugin stage that missed its soft
// deadline. It keeps retrying fn every parkRetryDelay for up to
// parkMaxAttempts; if every attempt misses the deadline again it raises a
// fatal alarm and leaves the pipeline name parked permanently, per the
// Open Question 1 decision recorded in DESIGN.md.
func (p *Pipeline) parkAndRetry(stage string, fn func(ctx context.Context) error) {
	park(p.cfg.Name)
	go func() {
		for attempt := 1; attempt <= parkMaxAttempts; attempt++ {
			time.Sleep(parkRetryDelay)
			done, err := stopWithDeadline(context.Background(), fn)
			if done && err == nil {
				unpark(p.cfg.Name)
				return
			}
		}
		if p.pctx != nil && p.pctx.Alarm != nil {
			p.pctx.Alarm.Raise(pcontext.Alarm{
				Pipeline:  p.cfg.Name,
				Component: stage,
				Level:     "fatal",
				Message:   "plugin failed to stop after retry budget exhausted; pipeline remains parked",
				Time:      time.Now(),
			})
		}
	}()
}

// loadExtended serializes and loads this pipeline's accumulated extended
// sub-pipelines atomically (spec.md §9 Open Question 2): both trees are
// prepared before either is handed to the loader, and a failure on the
// second LoadPipeline call rolls the first back via UnloadPipeline
// before Init returns false.
func (p *Pipeline) loadExtended(asm *assembly) error {
	withInput := asm.withInput
	withoutInput := asm.withoutInput

	if !withInput.IsZero() && anyFileTailing(p.inputs) {
		withInput = applyFileTailingLogQueueOverride(withInput)
	}

	loadWithInput := !withInput.IsZero()
	loadWithoutInput := !withoutInput.IsZero()
	if !loadWithInput && !loadWithoutInput {
		return nil
	}

	id := extended.ID(p.cfg.Name, extended.WithInput)
	idWithout := extended.ID(p.cfg.Name, extended.WithoutInput)

	if loadWithInput {
		if !p.deps.Extended.LoadPipeline(id, withInput, p.cfg.Project, p.cfg.Logstore, p.cfg.Region, p.cfg.Name) {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: "extended runtime rejected with-input sub-pipeline"}
		}
		p.extWithInputID = id
		p.extWithInputLoaded = true
	}

	if loadWithoutInput {
		if !p.deps.Extended.LoadPipeline(idWithout, withoutInput, p.cfg.Project, p.cfg.Logstore, p.cfg.Region, p.cfg.Name) {
			if p.extWithInputLoaded {
				p.deps.Extended.UnloadPipeline(id)
				p.extWithInputLoaded = false
				p.extWithInputID = ""
			}
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: "extended runtime rejected without-input sub-pipeline"}
		}
		p.extWithoutInputID = idWithout
		p.extWithoutInputLoaded = true
	}

	return nil
}

// anyFileTailing reports whether any input declares itself file-tailing
// (the abi.FileTailing optional capability).
func anyFileTailing(inputs []abi.Input) bool {
	for _, in := range inputs {
		if ft, ok := in.(abi.FileTailing); ok && ft.IsFileTailing() {
			return true
		}
	}
	return false
}

// applyFileTailingLogQueueOverride implements spec.md §4.6 step (b): when
// a file-tailing input coexists with extended processing, the extended
// default log-queue size is overridden rather than left at its default,
// since a tailed file can burst at a rate the extended runtime's generic
// default was never sized for.
func applyFileTailingLogQueueOverride(tree extended.Value) extended.Value {
	const fileTailingLogQueueSize = 10000
	override := extended.Value{Object: map[string]extended.Value{
		"log_queue_size": {Scalar: fileTailingLogQueueSize},
	}}
	return extended.Merge(tree, override)
}

// Start brings the pipeline's plugins up in the fixed order spec.md
// §4.6 specifies: sinks, then the without-input extended sub-pipeline,
// then the process queue (enabled last among ingress-adjacent stages so
// nothing can be popped before its downstream sinks exist), then the
// with-input extended sub-pipeline, then inputs. The two extended
// sub-pipeline stages have no action here: the extended runtime starts a
// sub-pipeline as soon as Init's loadExtended hands it over, so Start
// only orders the native stages around that already-running state.

func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sinks {
		if err := s.Start(ctx); err != nil {
			return &apipeline.FatalError{Pipeline: p.cfg.Name, Component: "sink:" + s.Name(), Reason: err.Error()}
		}
	}

	p.deps.ProcessQueues.Enable(p.processQueueKey)

	for _, in := range p.inputs {
		if err := in.Start(ctx); err != nil {
			return &apipeline.FatalError{Pipeline: p.cfg.Name, Component: "input:" + in.Name(), Reason: err.Error()}
		}
	}

	p.started = true
	return nil
}

// Stop tears the pipeline down in reverse-ish order per spec.md §4.6:
// inputs, then the with-input extended sub-pipeline, then the process
// queue is disabled, then (unless isRemoving) a final FlushBatch, then
// the without-input extended sub-pipeline, then sinks. It is idempotent
// (spec.md §8 invariant 9): a second call after the first completed is a
// no-op.
func (p *Pipeline) Stop(ctx context.Context, isRemoving bool) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	for _, in := range p.inputs {
		in := in
		done, err := stopWithDeadline(ctx, func(ctx context.Context) error {
			return in.Stop(ctx, isRemoving)
		})
		if !done {
			p.parkAndRetry("input:"+in.Name(), func(ctx context.Context) error {
				return in.Stop(ctx, isRemoving)
			})
		} else if err != nil {
			p.logWarn("input "+in.Name()+" stop: "+err.Error())
		}
	}

	if p.extWithInputLoaded {
		p.deps.Extended.UnloadPipeline(p.extWithInputID)
		p.extWithInputLoaded = false
	}

	p.deps.ProcessQueues.Disable(p.processQueueKey)

	if !isRemoving {
		if err := p.FlushBatch(ctx); err != nil {
			p.logWarn("flush batch on stop: " + err.Error())
		}
	}

	if p.extWithoutInputLoaded {
		p.deps.Extended.UnloadPipeline(p.extWithoutInputID)
		p.extWithoutInputLoaded = false
	}

	for _, s := range p.sinks {
		s := s
		done, err := stopWithDeadline(ctx, func(ctx context.Context) error {
			return s.Stop(ctx, isRemoving)
		})
		if !done {
			p.parkAndRetry("sink:"+s.Name(), func(ctx context.Context) error {
				return s.Stop(ctx, isRemoving)
			})
		} else if err != nil {
			p.logWarn("sink " + s.Name() + " stop: " + err.Error())
		}
	}

	if isRemoving {
		p.deps.ProcessQueues.DeleteQueue(p.processQueueKey)
		p.deps.Keys.Release(p.processQueueKey)
	}

	return nil
}

func (p *Pipeline) logWarn(msg string) {
	if p.pctx == nil || p.pctx.Logger == nil {
		return
	}
	p.pctx.Logger.Warn(context.Background(), msg, field.New("pipeline", p.cfg.Name))
}
