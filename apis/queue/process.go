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
)

// Variant selects the overflow discipline of a process queue.
type Variant uint8

const (
	// Bounded queues have fixed capacity; producers block or fail-fast
	// when full, and an accepted Push invokes the producer's AckFunc.
	Bounded Variant = iota
	// Circular queues have fixed capacity but never block producers:
	// the oldest entry is evicted to make room for a new one. Used when
	// the input cannot honor an ack callback.
	Circular
)

// PushOutcome reports what happened to a Push call.
type PushOutcome uint8

const (
	// Pushed means the group was accepted.
	Pushed PushOutcome = iota
	// Backpressured means a Bounded queue was full and the group was
	// rejected; the caller should retry or apply its own flow control.
	Backpressured
	// Evicted means a Circular queue was full and the oldest entry was
	// dropped to accept the new one.
	Evicted
)

// String renders the outcome for logs and test failure messages.
func (o PushOutcome) String() string {
	switch o {
	case Pushed:
		return "pushed"
	case Backpressured:
		return "backpressured"
	case Evicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Feedback is implemented by inputs that want to be un-throttled once
// their process queue has room again. One Feedback per distinct input
// kind is registered against a queue key.
type Feedback interface {
	// Resume is invoked by Pop when a queue that rejected a Push for being
	// full drops back below its capacity. There is no separate low-water
	// mark: a single free slot is enough.
	Resume()
}

// AckFunc is the callback a producer passes to Push. Push invokes it
// synchronously, with a nil error, as soon as a Bounded queue accepts
// the group; it is not deferred until the group is popped or processed,
// and Pop does not hand it to the consumer.
type AckFunc func(err error)

// ProcessQueueManager is the process-wide per-pipeline ingress queue
// manager described in spec.md §4.3.2.
type ProcessQueueManager interface {
	// CreateOrUpdateBoundedQueue creates (or adjusts the priority of) a
	// Bounded queue for key. Capacity is implementation-defined; this
	// interface offers no way to change it.
	CreateOrUpdateBoundedQueue(key Key, priority int) error

	// CreateOrUpdateCircularQueue creates (or adjusts) a Circular queue
	// for key with the given capacity.
	CreateOrUpdateCircularQueue(key Key, priority int, capacity int) error

	// SetFeedbackInterface registers the feedback callbacks invoked when
	// the queue identified by key has room again after rejecting a Push
	// (see Feedback).
	SetFeedbackInterface(key Key, feedbacks []Feedback)

	// SetDownStreamQueues declares which sink queues this process queue
	// feeds; used to gate Pop when any downstream queue is full.
	SetDownStreamQueues(key Key, sinkKeys []Key)

	// Push enqueues group respecting the variant semantics configured
	// for key. ack is only invoked for Bounded queues; it may be nil.
	Push(ctx context.Context, key Key, group *record.EventGroup, ack AckFunc) (PushOutcome, error)

	// Pop dequeues the next group across all live keys, honoring
	// priority-fair scheduling with a starvation guard (spec.md §4.3.2).
	// Returns (nil, false) when nothing is eligible to pop right now.
	Pop(ctx context.Context) (key Key, group *record.EventGroup, ok bool)

	// DeleteQueue tears down the queue for key after it has drained.
	DeleteQueue(key Key) error

	// Enable/Disable gate whether Pop considers this key at all; used by
	// Pipeline Start/Stop (spec.md §4.6) to sequence queue activation
	// relative to input/sink lifecycle.
	Enable(key Key)
	Disable(key Key)
}
