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

// Package abi declares the native Input and Processor plugin contracts
// (spec.md §6, "Plugin ABI (native)"). The Sink half of the same ABI
// lives in apis/sink, which predates this package and already owns the
// queue-key/fan-out vocabulary the Sink contract needs.
package abi

import (
	"context"

	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/record"
)

// Decision tells Process what to do with the group it just produced.
// The pipeline owns control flow; processors only report one of these.
type Decision uint8

const (
	// Continue passes the group to the next processor in the chain.
	Continue Decision = iota

	// Drop discards the group; it never reaches the router or sinks.
	Drop
)

// Input is a native source plugin: it produces EventGroups and pushes
// them into its pipeline's process queue from its own goroutine.
type Input interface {
	// Init wires the plugin to its PipelineContext. index is the
	// plugin's position among the pipeline's inputs (used to route
	// Process calls back to this input's inner processors). out
	// receives a descriptor when this input must delegate part of its
	// work to the extended runtime; a nil *extended.Descriptor means
	// no delegation occurred.
	Init(ctx context.Context, detail any, pctx *pcontext.Context, index int, out *extended.Descriptor) (ok bool, err error)

	// Start begins producing groups. Must return promptly; ongoing
	// production happens on goroutines owned by the input.
	Start(ctx context.Context) error

	// Stop halts production. isRemoving is true when the pipeline
	// itself is being torn down rather than merely restarted.
	Stop(ctx context.Context, isRemoving bool) error

	// Name identifies the plugin instance for diagnostics.
	Name() string

	// SupportAck reports whether this input expects per-group
	// acknowledgement of downstream delivery before considering a
	// group durably ingested (spec.md §4.6 "mixed ack-capability"
	// validation).
	SupportAck() bool

	// GetInnerProcessors returns the processors that run only on
	// groups produced by this input, ahead of the pipeline's shared
	// processor chain.
	GetInnerProcessors() []Processor
}

// Processor is a native transform plugin: it mutates an EventGroup in
// place and reports whether it should continue through the chain.
type Processor interface {
	// Init wires the plugin to its PipelineContext.
	Init(ctx context.Context, detail any, pctx *pcontext.Context) (ok bool, err error)

	// Process mutates groups in place. Returning an empty slice is
	// legal and signals "all events filtered" (spec.md §4.6).
	Process(ctx context.Context, groups []*record.EventGroup) ([]*record.EventGroup, Decision, error)

	// Name identifies the plugin instance for diagnostics.
	Name() string
}

// FileTailing is an optional capability an Input may implement to
// identify itself as reading from a tailed local file. The exactly-once
// assembly validation (spec.md §8 invariant 5) consults this instead of
// extending the core Input contract with a field every other input kind
// would have to stub out.
type FileTailing interface {
	IsFileTailing() bool
}
