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

// Package record defines dlog's in-memory event model: a single Event,
// the ordered EventGroup that carries a batch of them end to end through
// a pipeline, and the SourceBuffer arena that backs every string view
// inside a group.
//
// # Ownership
//
// An EventGroup owns exactly one SourceBuffer. Every byte-slice view
// inside the group's events is either a CopyString-allocated offset into
// that buffer, or a caller-owned view stored with SetContentNoCopy (the
// caller guarantees the backing memory outlives the group). EventGroup is
// move-only in spirit: Copy() produces a structurally identical group
// backed by an independent buffer, safe to hand to a second consumer.
//
// This package intentionally does not depend on any concrete input,
// processor or sink implementation, nor on any wire format. It is the
// vendor-neutral shape that every plugin ABI in apis/pipeline/abi
// exchanges.
package record
