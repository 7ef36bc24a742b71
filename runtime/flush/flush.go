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

// Package flush implements apis/flush.Manager: a process-wide scheduler
// that fires a sink's partial-batch flush callback at or after its
// registered deadline (spec.md §4.5).
//
// A time.Timer is used per registration rather than a cron-style
// scheduler: every registration is a one-shot deadline relative to when
// the first event of a partial batch arrived, never a recurring
// schedule, so robfig/cron/v3 (present elsewhere in the example pack)
// would be the wrong tool here.
package flush

import (
	"sync"
	"time"

	"dirpx.dev/dlog/apis/flush"
)

type registration struct {
	timer *time.Timer
	fired bool
}

// Manager is the concrete, concurrency-safe flush.Manager.
type Manager struct {
	mu   sync.Mutex
	regs map[flush.Key]*registration
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{regs: make(map[flush.Key]*registration)}
}

func (m *Manager) Register(key flush.Key, deadline time.Time, cb flush.Callback) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.regs[key]; ok && !prev.fired {
		prev.timer.Stop()
	}

	reg := &registration{}
	delay := time.Until(deadline)
	if delay < 0 {
		delay = 0
	}
	reg.timer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		cur, ok := m.regs[key]
		if !ok || cur != reg {
			m.mu.Unlock()
			return
		}
		reg.fired = true
		delete(m.regs, key)
		m.mu.Unlock()
		cb()
	})
	m.regs[key] = reg
}

func (m *Manager) Cancel(key flush.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[key]
	if !ok {
		return
	}
	if !reg.fired {
		reg.timer.Stop()
	}
	delete(m.regs, key)
}

// ClearRecords removes every outstanding registration for pipeline, so a
// stopped pipeline never receives a late flush (spec.md §4.5).
func (m *Manager) ClearRecords(pipeline string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, reg := range m.regs {
		if key.Pipeline != pipeline {
			continue
		}
		if !reg.fired {
			reg.timer.Stop()
		}
		delete(m.regs, key)
	}
}

var _ flush.Manager = (*Manager)(nil)
