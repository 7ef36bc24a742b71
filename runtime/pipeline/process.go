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

	"dirpx.dev/dlog/apis/pipeline/abi"
	"dirpx.dev/dlog/apis/record"
)

// Process runs inputs[inputIndex]'s own inner processors followed by the
// pipeline's shared processor chain, in that order (spec.md §4.6
// "Process"). Processors mutate groups in place; a processor returning
// Drop removes the group from the batch entirely, and a processor
// returning an empty slice (all events filtered) is legal and simply
// yields nothing further down the chain.
func (p *Pipeline) Process(ctx context.Context, groups []*record.EventGroup, inputIndex int) ([]*record.EventGroup, error) {
	var inner []abi.Processor
	if inputIndex >= 0 && inputIndex < len(p.inputs) {
		inner = p.inputs[inputIndex].GetInnerProcessors()
	}

	current := groups
	for _, chain := range [][]abi.Processor{inner, p.processors} {
		for _, proc := range chain {
			if len(current) == 0 {
				break
			}
			next := make([]*record.EventGroup, 0, len(current))
			for _, g := range current {
				out, decision, err := proc.Process(ctx, []*record.EventGroup{g})
				if err != nil {
					p.metrics.IncParseError()
					p.logWarn(fmt.Sprintf("processor %s: %s", proc.Name(), err))
					continue
				}
				if decision == abi.Drop {
					continue
				}
				next = append(next, out...)
			}
			current = next
		}
	}
	return current, nil
}

// Send applies the Router to each group and delivers it to the resulting
// sink indices (spec.md §4.6 "Send"). When more than one sink index
// matches, every index but the last receives an independent deep copy
// (spec.md §8 invariant 4) so sinks never alias each other's buffers;
// the last match takes ownership of the original group (invariant 3 for
// the single-match case). Invalid sink indices are logged, counted as a
// failure and otherwise skipped — they never abort the rest of the batch.
//
// The aggregate return is true iff every sub-send across every group
// reported true.
func (p *Pipeline) Send(ctx context.Context, groups []*record.EventGroup) (bool, error) {
	allOK := true
	for _, g := range groups {
		targets := p.router.Route(g)
		if len(targets) == 0 {
			p.metrics.IncRoutingMiss()
			continue
		}
		for i, idx := range targets {
			if idx < 0 || idx >= len(p.sinks) {
				p.metrics.IncSinkSendFailed()
				p.logWarn(fmt.Sprintf("route: invalid sink index %d", idx))
				allOK = false
				continue
			}
			out := g
			if i < len(targets)-1 {
				out = g.Copy()
			}
			ok, err := p.sinks[idx].Send(ctx, out)
			if err != nil {
				p.metrics.IncSinkSendFailed()
				p.logWarn(fmt.Sprintf("sink %s: %s", p.sinks[idx].Name(), err))
				allOK = false
				continue
			}
			if !ok {
				p.metrics.IncSinkSendFailed()
				allOK = false
			}
		}
	}
	return allOK, nil
}

// FlushBatch forces every sink to flush its buffered-but-not-yet-sent
// data, then clears any outstanding timeout-flush registrations for this
// pipeline (spec.md §4.6 "FlushBatch"). A sink reporting FlushAll failure
// is logged, not returned as an error: FlushBatch's job is to sweep every
// sink regardless of one sink's trouble, same as Send's per-index
// failure accounting.
func (p *Pipeline) FlushBatch(ctx context.Context) error {
	for _, s := range p.sinks {
		ok, err := s.FlushAll(ctx)
		if err != nil {
			p.logWarn(fmt.Sprintf("sink %s: flush: %s", s.Name(), err))
			continue
		}
		if !ok {
			p.logWarn(fmt.Sprintf("sink %s: flush incomplete", s.Name()))
		}
	}
	p.deps.Flush.ClearRecords(p.cfg.Name)
	return nil
}
