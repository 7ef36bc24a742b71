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

	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/record"
)

// Handle is an alias of pcontext.Handle, the small capability surface a
// plugin's Context exposes back to its owning pipeline in place of a raw
// *pipeline back-pointer (spec.md §9). It is defined in pcontext, not
// here, because this package depends on pcontext for GlobalOptions;
// defining Handle here too would make the two packages import each
// other. The alias exists so callers that only ever see apis/pipeline
// can spell it pipeline.Handle.
type Handle = pcontext.Handle

// Pipeline is the executable form of a Config: a named, owned set of
// inputs, processors, a router and sinks, carried through the full
// Init -> Start -> {Process, Send, FlushBatch} -> Stop lifecycle
// described in spec.md §4.6.
type Pipeline interface {
	// Init resolves every plugin entry against the native plugin
	// registries, falling back to extended-runtime delegation for
	// unresolved entries, and performs the fatal assembly validations
	// (mixed ack capability, exactly-once constraints, duplicate sink
	// queue keys). Returning ok=false means the pipeline must not be
	// started; err carries the reason.
	Init(ctx context.Context) (ok bool, err error)

	// Start brings up sinks, the extended-without-input sub-pipeline, the
	// process queue, the extended-with-input sub-pipeline and finally the
	// native inputs, in that order.
	Start(ctx context.Context) error

	// Process runs inputIndex's inner processors followed by the shared
	// processor chain over groups, mutating them in place. An empty
	// result is legal and means every event was filtered.
	Process(ctx context.Context, groups []*record.EventGroup, inputIndex int) ([]*record.EventGroup, error)

	// Send applies the router to each group and delivers the resulting
	// per-sink groups. It reports true only if every sub-send succeeded.
	Send(ctx context.Context, groups []*record.EventGroup) (bool, error)

	// FlushBatch forces every sink to flush its buffered batch, then
	// clears any outstanding timeout-flush registrations for this
	// pipeline so a stopped pipeline never receives a late flush.
	FlushBatch(ctx context.Context) error

	// Stop tears the pipeline down in the mirrored order: inputs, the
	// extended-with-input sub-pipeline, the process queue, an optional
	// FlushBatch, the extended-without-input sub-pipeline, then sinks.
	// isRemoving distinguishes a permanent removal from a restart.
	Stop(ctx context.Context, isRemoving bool) error

	// Name returns the pipeline's configuration name.
	Name() string
}

// Builder constructs a Pipeline from a declarative Config. It is the
// composition root's only entry point into this package.
type Builder interface {
	Build(ctx context.Context, cfg Config) (Pipeline, error)
}
