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

package policy

import (
	"sync"

	"dirpx.dev/dlog/apis/record"
	spolicy "dirpx.dev/dlog/apis/sink/policy"
)

// Batcher accumulates groups for a single sink until a policy.Batch's
// MaxEntries threshold is reached. Interval-based flushing is not timed
// here: Add reports when the batch went from empty to non-empty, so a
// caller can arm a deadline with apis/flush.Manager — Batcher only owns
// the in-memory accumulation. runtime/sink/file arms no such deadline:
// its batches are written when full or on FlushAll/Stop.
type Batcher struct {
	mu    sync.Mutex
	spec  spolicy.Batch
	items []*record.EventGroup
}

// NewBatcher constructs a Batcher for the given policy.
func NewBatcher(spec spolicy.Batch) *Batcher {
	return &Batcher{spec: spec}
}

// Add appends group to the batch and reports whether MaxEntries was just
// reached (the caller should Drain and send immediately) and whether
// this was the batch's first item since the last Drain (the caller
// should arm a timeout-flush deadline).
func (b *Batcher) Add(group *record.EventGroup) (full bool, firstOfBatch bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	firstOfBatch = len(b.items) == 0
	b.items = append(b.items, group)
	full = b.spec.MaxEntries > 0 && len(b.items) >= b.spec.MaxEntries
	return full, firstOfBatch
}

// Drain removes and returns every accumulated group.
func (b *Batcher) Drain() []*record.EventGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// Len reports how many groups are currently accumulated.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
