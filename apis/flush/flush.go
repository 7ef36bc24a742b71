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

// Package flush declares the process-wide batch/timeout flush scheduler
// contract (spec.md §4.5): sinks register a deadline for a partially
// filled batch, and the manager fires the callback at or after that
// deadline unless the registration is cancelled or cleared first.
package flush

import "time"

// Key identifies one outstanding flush registration within a pipeline.
// A sink typically uses its own queue.Key as the FlushKey.
type Key struct {
	Pipeline string
	FlushKey int64
}

// Callback is invoked when a registration's deadline elapses. It receives
// no arguments: the sink that registered the callback closes over
// whatever state it needs to flush.
type Callback func()

// Manager is the process-wide scheduler. A single implementation
// (runtime/flush) is shared by every pipeline; pipelines only see it
// through this interface, so tests can substitute a deterministic fake.
type Manager interface {
	// Register arms a flush for key at deadline. Registering again for
	// the same key before it fires replaces the prior deadline and
	// callback (a sink re-registering as it keeps appending to the same
	// partial batch).
	Register(key Key, deadline time.Time, cb Callback)

	// Cancel removes a single registration before it fires, if still
	// pending. It is a no-op if key is unknown or already fired.
	Cancel(key Key)

	// ClearRecords removes every outstanding registration for pipeline,
	// so a stopped pipeline never receives a late flush (spec.md §4.5,
	// called from Stop and FlushBatch).
	ClearRecords(pipeline string)
}
