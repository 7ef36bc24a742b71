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

package pipeline

// PluginEntry is one line item in a Config's plugin lists (Inputs,
// Processors, Sinks): a plugin type name plus its opaque configuration
// detail. Init resolves each entry against the native registries first,
// falling back to extended-runtime delegation when the type name is
// unknown (spec.md §4.6, step 3).
type PluginEntry struct {
	// Type selects the registered builder, e.g. "file" or "delimiter".
	Type string

	// Name is this entry's logical name within the pipeline, used for
	// diagnostics and as the plugin's Name() unless the plugin overrides
	// it internally.
	Name string

	// Detail is the plugin-specific configuration, decoded from the
	// owning Config's source tree. Native builders type-assert it to
	// their concrete Specification type; unresolved entries pass it
	// through to the extended runtime as an extended.Value instead.
	Detail any
}
