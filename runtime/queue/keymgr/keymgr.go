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

// Package keymgr implements apis/queue.KeyManager: the process-wide
// singleton vending stable integer keys for string pipeline names
// (spec.md §4.3.1).
package keymgr

import (
	"sync"

	"dirpx.dev/dlog/apis/queue"
)

type entry struct {
	key  queue.Key
	refs int
}

// Manager is a concurrency-safe, bidirectional name<->key directory.
// Each GetKey adds a reference and each Release drops one; the
// name<->key mapping is removed once the count reaches zero. Keys come
// from a counter that only increases, so a released key value is never
// handed out again. The queue managers do not call Release themselves:
// runtime/pipeline releases its process queue key once, when it removes
// the pipeline or rolls back a failed Init.
type Manager struct {
	mu      sync.Mutex
	byName  map[string]*entry
	byKey   map[queue.Key]string
	nextKey queue.Key
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{
		byName: make(map[string]*entry),
		byKey:  make(map[queue.Key]string),
	}
}

// Global is the process-wide key manager. Process queues and sink
// queues share one key space (spec.md §4.3.1: sink queues are "keyed the
// same way as process queues so a process queue can gate on a sink
// queue's Available() signal"), so every queue-owning component mints
// its key from this single Manager rather than a private one.
var Global = New()

// GetKey returns the stable key for name, allocating one on first use
// and incrementing its reference count. Idempotent: repeated calls for
// the same still-live name return the same key.
func (m *Manager) GetKey(name string) queue.Key {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.byName[name]; ok {
		e.refs++
		return e.key
	}

	m.nextKey++
	k := m.nextKey
	m.byName[name] = &entry{key: k, refs: 1}
	m.byKey[k] = name
	return k
}

// Release decrements key's reference count, freeing the name<->key
// mapping once it reaches zero. Releasing an unknown key is a no-op.
func (m *Manager) Release(key queue.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, ok := m.byKey[key]
	if !ok {
		return
	}
	e := m.byName[name]
	e.refs--
	if e.refs <= 0 {
		delete(m.byName, name)
		delete(m.byKey, key)
	}
}

// Name returns the pipeline name key was vended for, if key is still
// live.
func (m *Manager) Name(key queue.Key) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.byKey[key]
	return name, ok
}

var _ queue.KeyManager = (*Manager)(nil)
