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

// Package registry implements apis/registry.Registry: a concurrency-safe
// directory of (kind, name) -> Builder, generic over the instance and
// config types so input/processor/sink registries can each wrap a single
// implementation (runtime/input, runtime/processor, runtime/sink).
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	aregistry "dirpx.dev/dlog/apis/registry"
)

// Option configures a Registry at construction time.
type Option func(*options)

type options struct {
	caseFoldLower bool
}

// WithCaseFoldLower normalizes Key.Name to lowercase on every Register
// and CreateInstance call, matching the teacher's case-insensitive sink
// registry convention ("Registry is a global sink registry,
// case-insensitive for convenience").
func WithCaseFoldLower() Option {
	return func(o *options) { o.caseFoldLower = true }
}

type registry[S any, C any] struct {
	mu       sync.RWMutex
	builders map[aregistry.Key]aregistry.Builder[S, C]
	opts     options
	sealed   bool
}

// New constructs an empty, ready-to-use Registry.
func New[S any, C any](opts ...Option) aregistry.Registry[S, C] {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return &registry[S, C]{
		builders: make(map[aregistry.Key]aregistry.Builder[S, C]),
		opts:     o,
	}
}

func (r *registry[S, C]) normalize(key aregistry.Key) aregistry.Key {
	if r.opts.caseFoldLower {
		key.Kind = strings.ToLower(key.Kind)
		key.Name = strings.ToLower(key.Name)
	}
	return key
}

// Register associates key with b. Returns an error if key is already
// registered or the registry has been Sealed.
func (r *registry[S, C]) Register(key aregistry.Key, b aregistry.Builder[S, C]) error {
	key = r.normalize(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("registry: sealed, cannot register %+v", key)
	}
	if _, exists := r.builders[key]; exists {
		return fmt.Errorf("registry: duplicate registration for %+v", key)
	}
	r.builders[key] = b
	return nil
}

// CreateInstance looks up key and, if found, builds an instance. A
// missing key returns the zero value and ok=false with a nil error —
// callers interpret that as "delegate to the extended runtime", not as
// a failure.
func (r *registry[S, C]) CreateInstance(ctx context.Context, key aregistry.Key, name string, spec C) (S, bool, error) {
	key = r.normalize(key)

	r.mu.RLock()
	b, ok := r.builders[key]
	r.mu.RUnlock()

	var zero S
	if !ok {
		return zero, false, nil
	}
	inst, err := b.Build(ctx, name, spec)
	if err != nil {
		return zero, true, err
	}
	return inst, true, nil
}

// Has reports whether a builder is registered for key.
func (r *registry[S, C]) Has(key aregistry.Key) bool {
	key = r.normalize(key)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[key]
	return ok
}

// Seal prevents any further Register calls.
func (r *registry[S, C]) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// MustRegister registers b under key and panics on failure — intended
// for package init() call sites, where a duplicate registration is a
// programmer error that should fail fast at process start (spec.md
// §4.2: "duplicate registrations are a fatal configuration error").
func MustRegister[S any, C any](r aregistry.Registry[S, C], key aregistry.Key, b aregistry.Builder[S, C]) {
	if err := r.Register(key, b); err != nil {
		panic(err)
	}
}
