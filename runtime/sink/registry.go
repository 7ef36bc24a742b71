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

import (
	"context"

	aregistry "dirpx.dev/dlog/apis/registry"
	asink "dirpx.dev/dlog/apis/sink"
	"dirpx.dev/dlog/runtime/registry"
)

// Global is the process-wide native sink registry, case-insensitive for
// convenience, matching the teacher's original sink registry.
var Global aregistry.Registry[asink.Sink, *asink.Specification] = registry.New[asink.Sink, *asink.Specification](registry.WithCaseFoldLower())

// Register registers a sink builder under (kind, name).
// Typical usage from package init(): Register("sink", "stdout", build)
func Register(kind, name string, b asink.Builder) {
	registry.MustRegister(Global, aregistry.Key{Kind: kind, Name: name}, b)
}

// Build constructs a sink instance from the registered builder.
func Build(ctx context.Context, kind, name string, spec *asink.Specification) (asink.Sink, bool, error) {
	return Global.CreateInstance(ctx, aregistry.Key{Kind: kind, Name: name}, name, spec)
}

// Seal prevents further registrations (once all init() calls are done).
func Seal() { Global.Seal() }
