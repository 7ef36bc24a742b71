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

// Package extended declares the delegation ABI a pipeline uses to hand
// unresolved plugin entries to the extended sub-pipeline runtime
// (spec.md §6, "Extended runtime ABI"). The runtime on the other side of
// Loader is treated as opaque: this package only fixes the wire shape
// (ids, serialized config, merge semantics) a caller needs to talk to it.
package extended

import "fmt"

// Suffix distinguishes the two sub-pipelines a single native pipeline
// may carry (spec.md §4.6, "a pipeline may carry up to two extended
// sub-pipelines").
type Suffix int

const (
	// WithInput names the sub-pipeline that owns its own extended input
	// (no native input claimed the plugin chain's head).
	WithInput Suffix = 1

	// WithoutInput names the sub-pipeline that only receives groups
	// already produced by a native input.
	WithoutInput Suffix = 2
)

// ID formats the extended sub-pipeline identifier "<pipelineName>/1" or
// "<pipelineName>/2" per spec.md §6.
func ID(pipelineName string, s Suffix) string {
	return fmt.Sprintf("%s/%d", pipelineName, int(s))
}

// Descriptor is produced by a native plugin's Init when part of its work
// must be delegated to the extended runtime (e.g. a sink reachable only
// through it). Merge folds descriptors from several plugins into the
// active sub-pipeline's Config tree.
type Descriptor struct {
	// Sub selects which of the two sub-pipelines this descriptor joins.
	Sub Suffix

	// Config is the fragment to merge into that sub-pipeline's tree.
	Config Value
}

// Loader is the single collaborator a pipeline needs from the extended
// runtime: load a serialized sub-pipeline, and unload it symmetrically.
// Implementations live in runtime/extended; this package never imports
// them, so apis/pipeline can depend on Loader without depending on a
// concrete extended-runtime implementation.
type Loader interface {
	// LoadPipeline hands the runtime a fully merged sub-pipeline
	// configuration. id is formed by ID. Returns false if the runtime
	// rejected the configuration.
	LoadPipeline(id string, config Value, project, logstore, region, logstoreKey string) bool

	// UnloadPipeline tears down a previously loaded sub-pipeline. It is
	// always safe to call on an id that was never loaded.
	UnloadPipeline(id string)
}
