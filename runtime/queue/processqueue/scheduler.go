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

package processqueue

import (
	"context"
	"sort"

	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
)

// Pop implements the priority-fair scheduling policy from spec.md
// §4.3.2: among eligible keys (enabled, non-empty, not gated by a full
// downstream sink queue), the numerically lowest priority wins, keys
// within a band are served round-robin, and a starvation guard forces a
// yield to the next band after StarvationGuard consecutive pops from the
// same band.
func (m *Manager) Pop(ctx context.Context) (queue.Key, *record.EventGroup, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	priorities := m.eligiblePriorities()
	if len(priorities) == 0 {
		return 0, nil, false
	}

	minPriority := priorities[0]
	chosen := minPriority
	if minPriority == m.lastMinPriority && m.consecutiveAtMin >= StarvationGuard && len(priorities) > 1 {
		chosen = priorities[1]
		m.consecutiveAtMin = 0
	}

	key, ok := m.nextInBand(chosen)
	if !ok {
		// The band emptied between eligiblePriorities() and here (e.g. a
		// racing DeleteQueue); fall back to a full rescan of the next band.
		for _, p := range priorities {
			if key, ok = m.nextInBand(p); ok {
				chosen = p
				break
			}
		}
		if !ok {
			return 0, nil, false
		}
	}

	if chosen == m.lastMinPriority {
		m.consecutiveAtMin++
	} else {
		m.lastMinPriority = chosen
		m.consecutiveAtMin = 1
	}

	s := m.states[key]
	it := s.items[0]
	s.items = s.items[1:]

	if s.wasFull && len(s.items) < s.capacity {
		s.wasFull = false
		for _, fb := range s.feedbacks {
			fb.Resume()
		}
	}

	return key, it.group, true
}

// eligiblePriorities returns the distinct priority bands that currently
// have at least one eligible key, sorted ascending (0 = highest).
func (m *Manager) eligiblePriorities() []int {
	seen := make(map[int]bool)
	for key, s := range m.states {
		if m.isEligible(key, s) {
			seen[s.priority] = true
		}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func (m *Manager) isEligible(key queue.Key, s *state) bool {
	if !s.enabled || len(s.items) == 0 {
		return false
	}
	if len(s.downstream) == 0 || m.avail == nil {
		return true
	}
	// spec.md §4.3.2: any full downstream sink queue gates this process
	// queue out of Pop, so eligibility requires every declared downstream
	// key to report room, not merely one of them.
	for _, sinkKey := range s.downstream {
		if !m.avail.Available(sinkKey) {
			return false
		}
	}
	return true
}

// nextInBand advances the round-robin cursor for priority and returns the
// next eligible key in that band, if any.
func (m *Manager) nextInBand(priority int) (queue.Key, bool) {
	band := m.rr[priority]
	n := len(band)
	if n == 0 {
		return 0, false
	}
	start := m.rrIndex[priority] % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		key := band[idx]
		if s, ok := m.states[key]; ok && m.isEligible(key, s) {
			m.rrIndex[priority] = idx + 1
			return key, true
		}
	}
	return 0, false
}
