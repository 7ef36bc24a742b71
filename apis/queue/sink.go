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

package queue

import (
	"context"

	"dirpx.dev/dlog/apis/record"
	"dirpx.dev/dlog/apis/sink/policy"
)

// SinkQueueSpec configures a single sink's egress queue. It reuses the
// policy value types dlog already defines for sink behavior (capacity,
// backpressure, batching, retry) rather than inventing parallel ones.
type SinkQueueSpec struct {
	Capacity     int
	Concurrency  int
	Backpressure policy.Backpressure
	Batch        *policy.Batch
	Retry        *policy.Retry
}

// SinkQueueManager is the per-sink bounded egress queue manager
// described in spec.md §4.3.3. Each sink instance gets exactly one
// queue, keyed the same way as process queues so a process queue can
// gate on a sink queue's Available() signal without holding a pointer to
// it.
type SinkQueueManager interface {
	// CreateQueue creates (or replaces the spec of) the queue for key,
	// backed by a worker pool draining into send.
	CreateQueue(key Key, spec SinkQueueSpec, send func(ctx context.Context, group *record.EventGroup) (bool, error)) error

	// GetQueue returns whether a queue is registered for key.
	GetQueue(key Key) (SinkQueueSpec, bool)

	// Push enqueues group for asynchronous delivery by the sink's worker
	// pool. Returns Backpressured if the queue is full and the spec's
	// Backpressure policy is not Block (Block instead waits on ctx).
	Push(ctx context.Context, key Key, group *record.EventGroup) (PushOutcome, error)

	// Available reports whether the queue identified by key currently
	// has room; Process Queue Manager gating (spec.md §4.3.2) reads this.
	Available(key Key) bool

	// FlushAll force-drains every sink queue; used during shutdown
	// (spec.md §4.6 FlushBatch/Stop).
	FlushAll(ctx context.Context) error

	// DeleteQueue tears down the queue for key and stops its workers.
	DeleteQueue(key Key) error
}
