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

// Package processqueue implements apis/queue.ProcessQueueManager: the
// per-pipeline Bounded/Circular queue discipline, feedback-based
// backpressure and priority-fair scheduling described in spec.md §4.3.2.
package processqueue

import (
	"context"
	"fmt"
	"sync"

	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
)

const defaultBoundedCapacity = 1024

// AvailabilityChecker reports whether a sink queue still has room. The
// Manager consults it for every key in a process queue's declared
// downstream set before considering that process queue eligible to pop
// (spec.md §4.3.2: "when any downstream sink queue signals full, the
// corresponding process queue becomes ineligible for pop").
type AvailabilityChecker interface {
	Available(key queue.Key) bool
}

type item struct {
	group *record.EventGroup
	ack   queue.AckFunc
}

type state struct {
	variant    queue.Variant
	capacity   int
	priority   int
	enabled    bool
	items      []item
	feedbacks  []queue.Feedback
	downstream []queue.Key
	wasFull    bool
}

// Manager is the concrete, concurrency-safe ProcessQueueManager.
type Manager struct {
	mu    sync.Mutex
	avail AvailabilityChecker

	states map[queue.Key]*state

	// scheduling state, guarded by mu
	rr               map[int][]queue.Key // priority -> deterministic key order
	rrIndex          map[int]int         // priority -> next index into rr[priority]
	lastMinPriority  int
	consecutiveAtMin int
}

// StarvationGuard bounds how many consecutive pops the current lowest
// (numerically smallest) priority band may win before a pop is forced
// from the next band, even if the lowest band still has ready items.
const StarvationGuard = 8

// New constructs an empty Manager. avail may be nil, in which case
// downstream gating is skipped (every non-empty, enabled queue is
// eligible) — used by tests that exercise scheduling in isolation.
func New(avail AvailabilityChecker) *Manager {
	return &Manager{
		avail:           avail,
		states:          make(map[queue.Key]*state),
		rr:              make(map[int][]queue.Key),
		rrIndex:         make(map[int]int),
		lastMinPriority: -1,
	}
}

func (m *Manager) CreateOrUpdateBoundedQueue(key queue.Key, priority int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreate(key)
	s.variant = queue.Bounded
	if s.capacity == 0 {
		s.capacity = defaultBoundedCapacity
	}
	m.setPriority(key, s, priority)
	return nil
}

func (m *Manager) CreateOrUpdateCircularQueue(key queue.Key, priority int, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreate(key)
	s.variant = queue.Circular
	s.capacity = capacity
	m.setPriority(key, s, priority)
	return nil
}

func (m *Manager) getOrCreate(key queue.Key) *state {
	s, ok := m.states[key]
	if !ok {
		s = &state{}
		m.states[key] = s
	}
	return s
}

// setPriority must be called with mu held. It rebuilds the round-robin
// ordering for both the old and new priority band so Pop never sees a
// stale entry for key.
func (m *Manager) setPriority(key queue.Key, s *state, priority int) {
	if s.priority != priority {
		m.removeFromBand(s.priority, key)
	}
	s.priority = priority
	m.insertIntoBand(priority, key)
}

func (m *Manager) removeFromBand(priority int, key queue.Key) {
	band := m.rr[priority]
	for i, k := range band {
		if k == key {
			m.rr[priority] = append(band[:i], band[i+1:]...)
			return
		}
	}
}

func (m *Manager) insertIntoBand(priority int, key queue.Key) {
	for _, k := range m.rr[priority] {
		if k == key {
			return
		}
	}
	m.rr[priority] = append(m.rr[priority], key)
}

func (m *Manager) SetFeedbackInterface(key queue.Key, feedbacks []queue.Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[key]
	if !ok {
		return
	}
	s.feedbacks = feedbacks
}

func (m *Manager) SetDownStreamQueues(key queue.Key, sinkKeys []queue.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[key]
	if !ok {
		return
	}
	s.downstream = sinkKeys
}

func (m *Manager) Push(ctx context.Context, key queue.Key, group *record.EventGroup, ack queue.AckFunc) (queue.PushOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[key]
	if !ok {
		return queue.Backpressured, fmt.Errorf("processqueue: unknown key %d", key)
	}

	it := item{group: group, ack: ack}

	if len(s.items) >= s.capacity {
		switch s.variant {
		case queue.Circular:
			s.items = append(s.items[1:], it)
			return queue.Evicted, nil
		default:
			s.wasFull = true
			return queue.Backpressured, nil
		}
	}

	s.items = append(s.items, it)
	if ack != nil && s.variant == queue.Bounded {
		ack(nil)
	}
	return queue.Pushed, nil
}

func (m *Manager) DeleteQueue(key queue.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[key]
	if !ok {
		return nil
	}
	m.removeFromBand(s.priority, key)
	delete(m.states, key)
	return nil
}

func (m *Manager) Enable(key queue.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[key]; ok {
		s.enabled = true
	}
}

func (m *Manager) Disable(key queue.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[key]; ok {
		s.enabled = false
	}
}

var _ queue.ProcessQueueManager = (*Manager)(nil)
