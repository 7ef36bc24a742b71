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

package sink

import (
	"context"

	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
)

// Sink is the native plugin ABI for a pipeline egress destination, per
// spec.md §6 ("Native Plugin ABI"). A Sink owns exactly one Sink Queue
// (GetQueueKey); the queue layer, not the sink itself, is responsible
// for buffering and worker concurrency (runtime/queue/sinkqueue).
//
// Sink should avoid panicking: it is the end of the pipeline, and a
// panic there would take down a worker goroutine shared by other sinks.
type Sink interface {
	// Init builds the sink from its opaque detail config and the shared
	// pipeline Context. If the sink cannot be fully satisfied natively
	// (e.g. it must run in the extended runtime), it fills desc and
	// returns ok=false without error; a non-nil error means the
	// configuration itself was invalid (a fatal Init error).
	Init(ctx context.Context, detail any, pctx *pcontext.Context, desc *extended.Descriptor) (ok bool, err error)

	// Start begins accepting Sends. Called after the sink's queue has
	// been created by the Sink Queue Manager.
	Start(ctx context.Context) error

	// Stop releases resources. isRemoving permits dropping any buffered
	// work instead of attempting a best-effort flush.
	Stop(ctx context.Context, isRemoving bool) error

	// Send delivers one EventGroup. Returns false (without necessarily
	// an error) to signal the group was not accepted; Pipeline.Send
	// accounts every false as a send failure without aborting the rest
	// of the batch.
	Send(ctx context.Context, group *record.EventGroup) (bool, error)

	// FlushAll forces any buffered-but-not-yet-sent data out. Returns
	// false if flushing could not be completed.
	FlushAll(ctx context.Context) (bool, error)

	// GetQueueKey returns the queue key this sink's Sink Queue is
	// addressed by.
	GetQueueKey() queue.Key

	// Name returns a human-friendly identifier used in diagnostics,
	// metrics and config lookups.
	Name() string
}

// Canonical is an optional capability a Sink may implement to identify
// itself as the canonical remote store eligible for exactly-once
// delivery (spec.md §8 invariant 5), the Sink-side counterpart of
// abi.FileTailing.
type Canonical interface {
	IsCanonical() bool
}
