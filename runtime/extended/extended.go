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

// Package extended implements apis/extended.Loader. The real extended
// sub-pipeline runtime this ABI was designed to front is out of scope
// for this module (spec.md treats it as opaque); this implementation
// tracks which ids are currently loaded and what configuration they were
// loaded with, which is enough to drive and test the atomic two-phase
// load/rollback policy in runtime/pipeline (spec.md §9, Open Question 2).
package extended

import (
	"sync"

	aextended "dirpx.dev/dlog/apis/extended"
)

// Loader is a concurrency-safe, in-memory Loader. A production build
// would forward LoadPipeline/UnloadPipeline to the actual extended
// runtime process over whatever transport it exposes; nothing in the
// example pack or spec.md names that transport, so this implementation
// stands in as the reference behavior: accept any well-formed load,
// reject none.
type Loader struct {
	mu     sync.Mutex
	loaded map[string]aextended.Value
}

// New constructs an empty Loader.
func New() *Loader {
	return &Loader{loaded: make(map[string]aextended.Value)}
}

func (l *Loader) LoadPipeline(id string, config aextended.Value, project, logstore, region, logstoreKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded[id] = config
	return true
}

func (l *Loader) UnloadPipeline(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.loaded, id)
}

// Loaded reports whether id is currently loaded, and its configuration.
// Exposed for tests asserting rollback behavior.
func (l *Loader) Loaded(id string) (aextended.Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.loaded[id]
	return v, ok
}

var _ aextended.Loader = (*Loader)(nil)
