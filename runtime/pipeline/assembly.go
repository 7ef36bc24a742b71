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

	"dirpx.dev/dlog/apis/extended"
	apipeline "dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/queue"
	aregistry "dirpx.dev/dlog/apis/registry"
	asink "dirpx.dev/dlog/apis/sink"
)

// assembly accumulates the result of resolving one pipeline's plugin
// entries against the native registries, and the config fragments that
// fell through to the extended runtime instead (spec.md §4.6 step 3).
//
// A plugin entry joins the with-input sub-pipeline while no native
// input or processor has yet claimed the chain's head, and the
// without-input sub-pipeline afterward — haveNativeHead flips permanently
// the first time an input or processor entry resolves natively (a sink
// entry never flips it), matching "with-input when no native
// input/processor has claimed the head; without-input otherwise".
type assembly struct {
	pipeline *Pipeline

	haveNativeHead bool
	delegatedAny   bool

	withInput    extended.Value
	withoutInput extended.Value
}

// activeTree returns the extended sub-pipeline tree a newly delegated
// entry should merge into, given the current native-head state.
func (a *assembly) activeTree() *extended.Value {
	if a.haveNativeHead {
		return &a.withoutInput
	}
	return &a.withInput
}

func entryTree(kind string, entry apipeline.PluginEntry) extended.Value {
	detail, _ := entry.Detail.(extended.Value)
	return extended.Value{Object: map[string]extended.Value{
		"kind": {Scalar: kind},
		"type": {Scalar: entry.Type},
		"name": {Scalar: entry.Name},
		"detail": detail,
	}}
}

func appendEntryTree(dst *extended.Value, key string, entry extended.Value) {
	list := dst.Array
	if dst.Object != nil {
		if existing, ok := dst.Object[key]; ok {
			list = existing.Array
		}
	}
	list = append(list, entry)
	if dst.Object == nil {
		dst.Object = make(map[string]extended.Value, 1)
	}
	dst.Object[key] = extended.Value{Array: list}
}

// mergeDescriptor folds a native plugin's extended descriptor (produced
// when it must delegate part of its own work) into the sub-pipeline the
// descriptor names, per spec.md §4.6 ("that sink's optional extended
// descriptor is merged into the currently-active sub-pipeline").
func (a *assembly) mergeDescriptor(desc *extended.Descriptor) {
	if desc == nil || desc.Config.IsZero() {
		return
	}
	a.delegatedAny = true
	switch desc.Sub {
	case extended.WithInput:
		a.withInput = extended.Merge(a.withInput, desc.Config)
	default:
		a.withoutInput = extended.Merge(a.withoutInput, desc.Config)
	}
}

func (a *assembly) buildInputs(ctx context.Context) error {
	p := a.pipeline
	p.inputs = make([]abi.Input, 0, len(p.cfg.Inputs))
	for _, entry := range p.cfg.Inputs {
		key := aregistry.Key{Kind: "input", Name: entry.Type}
		inst, ok, err := p.deps.Inputs.CreateInstance(ctx, key, entry.Name, entry.Detail)
		if err != nil {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: fmt.Sprintf("input %q: %s", entry.Name, err)}
		}
		if !ok {
			a.delegatedAny = true
			appendEntryTree(a.activeTree(), "inputs", entryTree("input", entry))
			continue
		}

		var desc extended.Descriptor
		index := len(p.inputs)
		initOK, err := inst.Init(ctx, entry.Detail, p.pctx, index, &desc)
		if err != nil {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: fmt.Sprintf("input %q: init: %s", entry.Name, err)}
		}
		a.haveNativeHead = true
		a.mergeDescriptor(&desc)
		if !initOK {
			continue
		}
		p.inputs = append(p.inputs, inst)
	}
	return nil
}

func (a *assembly) buildProcessors(ctx context.Context) error {
	p := a.pipeline
	p.processors = make([]abi.Processor, 0, len(p.cfg.Processors))
	for _, entry := range p.cfg.Processors {
		key := aregistry.Key{Kind: "processor", Name: entry.Type}
		inst, ok, err := p.deps.Processors.CreateInstance(ctx, key, entry.Name, entry.Detail)
		if err != nil {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: fmt.Sprintf("processor %q: %s", entry.Name, err)}
		}
		if !ok {
			a.delegatedAny = true
			appendEntryTree(a.activeTree(), "processors", entryTree("processor", entry))
			continue
		}

		initOK, err := inst.Init(ctx, entry.Detail, p.pctx)
		if err != nil {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: fmt.Sprintf("processor %q: init: %s", entry.Name, err)}
		}
		a.haveNativeHead = true
		if !initOK {
			a.delegatedAny = true
			appendEntryTree(a.activeTree(), "processors", entryTree("processor", entry))
			continue
		}
		p.processors = append(p.processors, inst)
	}
	return nil
}

func (a *assembly) buildSinks(ctx context.Context) error {
	p := a.pipeline
	p.sinks = make([]asink.Sink, 0, len(p.cfg.Sinks))
	p.sinkKeys = make([]queue.Key, 0, len(p.cfg.Sinks))
	for _, entry := range p.cfg.Sinks {
		key := aregistry.Key{Kind: "sink", Name: entry.Type}
		spec, _ := entry.Detail.(*asink.Specification)
		inst, ok, err := p.deps.Sinks.CreateInstance(ctx, key, entry.Name, spec)
		if err != nil {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: fmt.Sprintf("sink %q: %s", entry.Name, err)}
		}
		if !ok {
			a.delegatedAny = true
			appendEntryTree(a.activeTree(), "sinks", entryTree("sink", entry))
			continue
		}

		var desc extended.Descriptor
		initOK, err := inst.Init(ctx, entry.Detail, p.pctx, &desc)
		if err != nil {
			return &apipeline.ConfigError{Pipeline: p.cfg.Name, Reason: fmt.Sprintf("sink %q: init: %s", entry.Name, err)}
		}
		a.mergeDescriptor(&desc)
		if !initOK {
			continue
		}
		p.sinks = append(p.sinks, inst)
		p.sinkKeys = append(p.sinkKeys, inst.GetQueueKey())
	}
	return nil
}
