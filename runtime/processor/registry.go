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

// Package processor wraps the generic runtime/registry engine with the
// Processor/Specification types (spec.md §4.2).
package processor

import (
	"dirpx.dev/dlog/apis/pipeline/abi"
	aregistry "dirpx.dev/dlog/apis/registry"
	"dirpx.dev/dlog/runtime/registry"
)

// Builder constructs a named Processor instance from its opaque config.
type Builder = aregistry.Builder[abi.Processor, any]

// Registry is the process-wide native processor plugin directory.
type Registry = aregistry.Registry[abi.Processor, any]

// Global is the default process-wide Registry.
var Global Registry = registry.New[abi.Processor, any]()
