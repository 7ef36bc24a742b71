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

// Package registry declares the generic (kind, typeName) -> factory
// directory contract shared by the input, processor and sink registries
// (spec.md §4.2). A single generic implementation lives in
// runtime/registry; runtime/input, runtime/processor and runtime/sink
// each wrap it with their own instance/config types, the same way the
// teacher's runtime/sink package wrapped a (then-unimplemented)
// registry.New[Sink, Specification] call.
package registry

import "context"

// Key identifies a registered builder by plugin kind ("input",
// "processor", "sink") and type name ("file", "delimiter", "otlp", ...).
type Key struct {
	Kind string
	Name string
}

// Builder constructs an instance of type S from a declarative
// configuration C. Implementations must be stateless and safe for
// concurrent use — Build may run concurrently for different pipelines.
type Builder[S any, C any] interface {
	// Build constructs the instance for the given logical name and spec.
	Build(ctx context.Context, name string, spec C) (S, error)
}

// BuilderFunc adapts a plain function to Builder.
type BuilderFunc[S any, C any] func(ctx context.Context, name string, spec C) (S, error)

// Build calls f.
func (f BuilderFunc[S, C]) Build(ctx context.Context, name string, spec C) (S, error) {
	return f(ctx, name, spec)
}

// Registry is a process-wide directory mapping Keys to Builders.
//
// Register is idempotent per Key only in the sense that calling it
// twice for the same Key is a fatal configuration error (spec.md §4.2:
// "duplicate registrations are a fatal configuration error") — it is the
// caller's responsibility to guard init()-time registration against
// accidental double-imports; runtime/registry.MustRegister panics so the
// mistake surfaces at process start rather than at first use.
//
// CreateInstance returns the zero value of S and ok=false for an unknown
// Key rather than an error, per spec.md §4.2 ("Returns null for unknown
// names; callers must fall back to delegating the plugin to the
// extended runtime") — an unknown plugin type is not necessarily a
// config error, it may simply belong to the extended runtime.
type Registry[S any, C any] interface {
	Register(key Key, b Builder[S, C]) error
	CreateInstance(ctx context.Context, key Key, name string, spec C) (S, bool, error)
	Has(key Key) bool
	Seal()
}
