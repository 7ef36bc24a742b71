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

// Package file implements a native egress Sink that appends encoded
// events to a local, rotating file. It composes runtime/sink/policy's
// Rotator and Batcher with an encoder.Encoder rather than reimplementing
// any of those concerns, the same way runtime/queue/sinkqueue composes
// the policy types with its own worker pool.
package file

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/queue"
	aregistry "dirpx.dev/dlog/apis/registry"
	"dirpx.dev/dlog/apis/record"
	asink "dirpx.dev/dlog/apis/sink"
	spolicy "dirpx.dev/dlog/apis/sink/policy"
	"dirpx.dev/dlog/runtime/encoder"
	jsonenc "dirpx.dev/dlog/runtime/encoder/json"
	"dirpx.dev/dlog/runtime/queue/keymgr"
	"dirpx.dev/dlog/runtime/sink/policy"
	sinkregistry "dirpx.dev/dlog/runtime/sink"
)

// init registers this plugin under kind "sink", name "file" in
// runtime/sink.Global, so any binary that imports this package can
// reference it from a declarative pipeline.Config.
func init() {
	sinkregistry.Register("sink", "file", aregistry.BuilderFunc[asink.Sink, *asink.Specification](Build))
}

// Detail is the file sink's plugin-specific config (apis/sink.Sink.Init's
// detail argument). Queue capacity, backpressure, retry and batch
// behavior all come from the shared apis/sink.Specification instead, so
// a file sink's own config is just where and how to write.
type Detail struct {
	// Path is the active log file path.
	Path string

	// FileMode controls permissions for created files. Zero means 0640.
	FileMode os.FileMode
}

// Sink appends every received EventGroup's events to a rotating file as
// newline-delimited JSON.
type Sink struct {
	mu       sync.Mutex
	name     string
	spec     *asink.Specification
	key      queue.Key
	rotator  *policy.Rotator
	batch    *policy.Batcher
	maxEntries int
	enc      encoder.Encoder
	retry    spolicy.Retry
}

var _ asink.Sink = (*Sink)(nil)

// Build implements asink.Builder; this package's init registers it under
// kind "sink", name "file".
func Build(ctx context.Context, name string, spec *asink.Specification) (asink.Sink, error) {
	return &Sink{name: name, spec: spec}, nil
}

// Init opens the active file and wires up batching/rotation from detail
// and the shared Specification. detail must be *Detail; any other type
// makes Init report ok=false without error and without filling desc, and
// runtime/pipeline then leaves this sink out.
func (s *Sink) Init(ctx context.Context, detail any, pctx *pcontext.Context, desc *extended.Descriptor) (bool, error) {
	d, ok := detail.(*Detail)
	if !ok || d == nil {
		return false, nil
	}
	if d.Path == "" {
		return false, &pipeline.ConfigError{Pipeline: pctx.Name, Reason: "file sink: empty path"}
	}

	var rotation spolicy.Rotation
	if s.spec != nil && s.spec.Rotation != nil {
		rotation = *s.spec.Rotation
	}
	rotator, err := policy.NewRotator(policy.RotatorOptions{
		Path:     d.Path,
		Policy:   rotation,
		FileMode: d.FileMode,
	})
	if err != nil {
		return false, &pipeline.ConfigError{Pipeline: pctx.Name, Reason: "file sink: " + err.Error()}
	}

	s.mu.Lock()
	s.rotator = rotator
	s.enc = jsonenc.New(encoder.Options{})
	if s.spec != nil {
		s.retry = s.spec.Retry
	}
	if s.spec != nil && s.spec.Batch != nil {
		s.batch = policy.NewBatcher(*s.spec.Batch)
		s.maxEntries = s.spec.Batch.MaxEntries
	}
	s.key = keymgr.Global.GetKey(s.name)
	s.mu.Unlock()

	return true, nil
}

// Start is a no-op: the active file is already open after Init.
func (s *Sink) Start(ctx context.Context) error { return nil }

// Stop closes the rotator. When isRemoving is false, any batched groups
// are flushed first so Stop never silently drops buffered data during a
// normal shutdown.
func (s *Sink) Stop(ctx context.Context, isRemoving bool) error {
	if !isRemoving {
		if _, err := s.FlushAll(ctx); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotator == nil {
		return nil
	}
	return s.rotator.Close()
}

// Send accepts one EventGroup. With no Batch policy configured, it is
// written through immediately; otherwise it is accumulated and only
// written once the batch fills (FlushAll/Stop handle the remainder).
func (s *Sink) Send(ctx context.Context, group *record.EventGroup) (bool, error) {
	if s.batch == nil {
		return s.writeGroups(ctx, []*record.EventGroup{group})
	}

	full, _ := s.batch.Add(group)
	if !full {
		return true, nil
	}
	return s.writeGroups(ctx, s.batch.Drain())
}

// FlushAll writes out any groups currently held in the batch.
func (s *Sink) FlushAll(ctx context.Context) (bool, error) {
	if s.batch == nil {
		s.mu.Lock()
		r := s.rotator
		s.mu.Unlock()
		if r == nil {
			return true, nil
		}
		return true, r.Sync()
	}
	if s.batch.Len() == 0 {
		return true, nil
	}
	return s.writeGroups(ctx, s.batch.Drain())
}

// GetQueueKey returns the queue key minted for this sink instance.
func (s *Sink) GetQueueKey() queue.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Name returns the sink's configured name.
func (s *Sink) Name() string { return s.name }

func (s *Sink) writeGroups(ctx context.Context, groups []*record.EventGroup) (bool, error) {
	s.mu.Lock()
	rotator, enc := s.rotator, s.enc
	s.mu.Unlock()
	if rotator == nil {
		return false, errors.New("file sink: not initialized")
	}

	var buf bytes.Buffer
	for _, g := range groups {
		for i := range g.Events {
			if err := enc.Encode(g, &g.Events[i], &buf); err != nil {
				return false, err
			}
		}
	}
	if buf.Len() == 0 {
		return true, nil
	}

	if err := s.writeWithRetry(ctx, rotator, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// writeWithRetry applies the sink's Retry policy around a single
// rotator.Write call. With retries disabled, it is a plain pass-through.
func (s *Sink) writeWithRetry(ctx context.Context, rotator *policy.Rotator, data []byte) error {
	if !s.retry.Enable {
		_, err := rotator.Write(data)
		return err
	}

	delay := s.retry.Initial
	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if _, err := rotator.Write(data); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt == s.retry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if s.retry.Multiplier > 0 {
			delay = time.Duration(float64(delay) * s.retry.Multiplier)
		}
		if s.retry.Max > 0 && delay > s.retry.Max {
			delay = s.retry.Max
		}
	}
	return lastErr
}
