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

// Group represents a single logical sink that fans a group out to
// several underlying sinks (e.g. a "canonical remote store" sink that is
// actually two redundant regional endpoints behind one queue key).
//
// This is distinct from the Router's own fan-out (spec.md §4.4): the
// Router picks *which configured sinks* see a group; Group lets a single
// configured sink be internally redundant without the Router or the
// queue layer knowing about it — Group still owns exactly one queue key
// (GetQueueKey), satisfying the "exactly one sink queue per sink
// instance" invariant in spec.md §3.
type Group interface {
	Sink

	// Add registers a new member sink in the group.
	// If a sink with the same name already exists, the behavior is implementation-defined
	// (typically: return an error).
	Add(s Sink) error

	// Remove unregisters a member sink by its name.
	// If the sink is not found, implementations may return an error or ignore silently.
	Remove(name string) error

	// List returns the names of all member sinks currently registered.
	List() []string
}
