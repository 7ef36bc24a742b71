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
	"fmt"
	"time"

	dlogapis "dirpx.dev/dlog/apis"
	dlogctx "dirpx.dev/dlog/apis/context"
	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/field"
	"dirpx.dev/dlog/apis/flush"
	apipeline "dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/queue"
	aregistry "dirpx.dev/dlog/apis/registry"
	asink "dirpx.dev/dlog/apis/sink"
	runtimerouter "dirpx.dev/dlog/runtime/router"
	"dirpx.dev/dlog/runtime/zaplog"
	"go.uber.org/zap"
)

// Deps are the process-wide collaborators a Builder wires into every
// Pipeline it constructs (spec.md §9: "global singletons should be
// modeled as explicit collaborators owned by an application-level
// composition root and passed into pipelines at construction").
type Deps struct {
	Inputs     aregistry.Registry[abi.Input, any]
	Processors aregistry.Registry[abi.Processor, any]
	Sinks      aregistry.Registry[asink.Sink, *asink.Specification]

	Keys          queue.KeyManager
	ProcessQueues queue.ProcessQueueManager
	SinkQueues    queue.SinkQueueManager
	Flush         flush.Manager
	Extended      extended.Loader

	// Base is the process-wide zap logger every pipeline derives its own
	// Context.Logger from, enriched with a per-pipeline Pack via
	// runtime/zaplog.
	Base *zap.Logger

	Alarm pcontext.AlarmSink
}

// Builder constructs Pipelines from a declarative Config (apis/pipeline
// .Builder). It holds no per-pipeline state itself; everything specific
// to one pipeline lives on the Pipeline instance Build returns.
type Builder struct {
	deps Deps
}

// NewBuilder wires deps into a Builder. deps.Base may be nil, in which
// case zap.NewNop() backs every pipeline's logger.
func NewBuilder(deps Deps) *Builder {
	if deps.Base == nil {
		deps.Base = zap.NewNop()
	}
	return &Builder{deps: deps}
}

var _ apipeline.Builder = (*Builder)(nil)

// Build allocates a Pipeline for cfg. The returned Pipeline is not yet
// initialized: callers must call Init before Start.
func (b *Builder) Build(ctx context.Context, cfg apipeline.Config) (apipeline.Pipeline, error) {
	if cfg.Name == "" {
		return nil, &apipeline.ConfigError{Reason: "pipeline name is required"}
	}
	return &Pipeline{deps: b.deps, cfg: cfg, stopDisabled: make(map[string]bool)}, nil
}

// Init resolves every plugin entry, runs the fatal assembly validations,
// and (if everything checks out) reserves the process queue key and
// loads any accumulated extended sub-pipelines. On any failure it
// returns false having reserved nothing (spec.md §8 invariant 1).
func (p *Pipeline) Init(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isParked(p.cfg.Name) {
		return false, &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: "pipeline has parked plugins from a prior Stop; refusing re-Init"}
	}

	// The Context is built first (minus its process queue key, which is
	// only known once reserved below) so plugin Init calls below can
	// receive it; plugins only read ProcessQueueKey later, from Start
	// onward, never during their own Init.
	p.pctx = &pcontext.Context{
		Name:       p.cfg.Name,
		CreateTime: time.Now(),
		Project:    p.cfg.Project,
		Logstore:   p.cfg.Logstore,
		Region:     p.cfg.Region,
		Identity: dlogctx.Pack{
			Service: p.cfg.Name,
			Region:  p.cfg.Region,
		},
		Global: p.cfg.Global,
		Logger: p.buildLogger(),
		Alarm:  p.deps.Alarm,
		Handle: p,
	}

	asm := &assembly{pipeline: p}

	if err := asm.buildInputs(ctx); err != nil {
		return false, err
	}
	if err := asm.buildProcessors(ctx); err != nil {
		return false, err
	}
	if err := asm.buildSinks(ctx); err != nil {
		return false, err
	}

	if err := validateAckHomogeneity(p.inputs); err != nil {
		p.rollbackPlugins(ctx)
		return false, err
	}
	if err := validateExactlyOnce(p.cfg, p.inputs, p.sinks, asm); err != nil {
		p.rollbackPlugins(ctx)
		return false, err
	}
	if err := validateUniqueSinkKeys(p.sinks); err != nil {
		p.rollbackPlugins(ctx)
		return false, err
	}

	p.router = runtimerouter.New(p.cfg.Router)

	priority := p.cfg.Priority
	if priority == 0 {
		priority = p.cfg.Global.DefaultProcessPriority
	}

	p.processQueueKey = p.deps.Keys.GetKey(p.cfg.Name)
	p.pctx.ProcessQueueKey = p.processQueueKey

	ack, _ := homogeneousAck(p.inputs)
	if ack {
		if err := p.deps.ProcessQueues.CreateOrUpdateBoundedQueue(p.processQueueKey, priority); err != nil {
			p.rollbackQueueKey()
			return false, &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: "process queue: " + err.Error()}
		}
	} else {
		const defaultCircularCapacity = 4096
		if err := p.deps.ProcessQueues.CreateOrUpdateCircularQueue(p.processQueueKey, priority, defaultCircularCapacity); err != nil {
			p.rollbackQueueKey()
			return false, &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: "process queue: " + err.Error()}
		}
	}
	p.deps.ProcessQueues.SetDownStreamQueues(p.processQueueKey, p.sinkKeys)
	p.deps.ProcessQueues.Disable(p.processQueueKey)

	if err := p.loadExtended(asm); err != nil {
		p.rollbackQueueKey()
		return false, err
	}

	return true, nil
}

// rollbackPlugins stops every already-initialized input and sink when a
// later assembly validation fails, so a rejected config leaves no
// running plugin behind even though the native ABI gives Init no
// separate "undo" call (spec.md §8 invariant 1: Init failure must leave
// no side effects). Processors carry no Stop method — they hold no
// resources of their own beyond what Init's detail already described.
func (p *Pipeline) rollbackPlugins(ctx context.Context) {
	for _, in := range p.inputs {
		_ = in.Stop(ctx, true)
	}
	for _, s := range p.sinks {
		_ = s.Stop(ctx, true)
	}
	p.inputs = nil
	p.sinks = nil
	p.processors = nil
}

func (p *Pipeline) rollbackQueueKey() {
	_ = p.deps.ProcessQueues.DeleteQueue(p.processQueueKey)
	p.deps.Keys.Release(p.processQueueKey)
	p.processQueueKey = queue.Zero
}

// buildLogger derives this pipeline's Context.Logger from the Builder's
// process-wide base, pre-binding the pipeline's own identity fields so
// every plugin's log line carries them without repeating itself.
func (p *Pipeline) buildLogger() dlogapis.Logger {
	base := zaplog.New(p.deps.Base, nil)
	return base.WithFields(
		field.New("pipeline", p.cfg.Name),
		field.New("project", p.cfg.Project),
		field.New("logstore", p.cfg.Logstore),
	)
}

// homogeneousAck reports whether every input shares the same SupportAck
// value. An empty or single-input pipeline is trivially homogeneous; its
// ack value defaults to true (bounded queue) when there are no inputs at
// all, matching the conservative default of preserving delivery.
func homogeneousAck(inputs []abi.Input) (ack bool, uniform bool) {
	if len(inputs) == 0 {
		return true, true
	}
	want := inputs[0].SupportAck()
	for _, in := range inputs[1:] {
		if in.SupportAck() != want {
			return want, false
		}
	}
	return want, true
}

func validateAckHomogeneity(inputs []abi.Input) error {
	if _, uniform := homogeneousAck(inputs); !uniform {
		return &apipeline.ConfigError{Reason: "mixed ack-capability across inputs"}
	}
	return nil
}

func validateUniqueSinkKeys(sinks []asink.Sink) error {
	seen := make(map[queue.Key]string, len(sinks))
	for _, s := range sinks {
		k := s.GetQueueKey()
		if other, ok := seen[k]; ok {
			return &apipeline.ConfigError{Reason: fmt.Sprintf("duplicate sink queue key %d shared by %q and %q", k, other, s.Name())}
		}
		seen[k] = s.Name()
	}
	return nil
}

// validateExactlyOnce enforces spec.md §8 invariant 5: exactly-once
// requires every input to be file-tailing, every sink to be canonical,
// and no plugin to have required extended-runtime delegation.
func validateExactlyOnce(cfg apipeline.Config, inputs []abi.Input, sinks []asink.Sink, asm *assembly) error {
	if !cfg.ExactlyOnce {
		return nil
	}
	if asm.delegatedAny {
		return &apipeline.ConfigError{Pipeline: cfg.Name, Reason: "exactly-once forbids extended-runtime delegation"}
	}
	for _, in := range inputs {
		ft, ok := in.(abi.FileTailing)
		if !ok || !ft.IsFileTailing() {
			return &apipeline.ConfigError{Pipeline: cfg.Name, Reason: "exactly-once requires every input to be file-tailing"}
		}
	}
	for _, s := range sinks {
		c, ok := s.(asink.Canonical)
		if !ok || !c.IsCanonical() {
			return &apipeline.ConfigError{Pipeline: cfg.Name, Reason: "exactly-once requires every sink to be canonical"}
		}
	}
	return nil
}
