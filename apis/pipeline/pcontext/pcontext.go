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

// Package pcontext defines the read-only-after-Init bag every native
// plugin receives from its owning pipeline (spec.md §4.7). It is split
// out of apis/pipeline so that apis/sink and apis/pipeline/abi can both
// depend on the context shape without depending on the pipeline package
// itself (which in turn imports pcontext for GlobalOptions and Handle).
package pcontext

import (
	"context"
	"time"

	dlogapis "dirpx.dev/dlog/apis"
	dlogctx "dirpx.dev/dlog/apis/context"
	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
)

// Handle is the small capability surface a plugin's Context exposes back
// to its owning pipeline, in place of a raw *pipeline back-pointer
// (spec.md §9: the Pipeline<->Context cyclic reference is resolved by
// handing plugins a narrow accessor interface instead of the concrete
// type). It lives here, not in apis/pipeline, because apis/pipeline
// itself depends on this package for GlobalOptions — defining Handle in
// apis/pipeline would make the two packages import each other.
// apis/pipeline.Handle is an alias of this type for callers that only
// ever see the pipeline package.
type Handle interface {
	// PipelineName returns the owning pipeline's configuration name.
	PipelineName() string

	// ProcessQueueKey returns the process queue key this pipeline's
	// inputs push into.
	ProcessQueueKey() queue.Key

	// Reprocess re-runs Process/Send for groups a plugin produced out of
	// band (e.g. a replay after a recoverable parse failure) without the
	// plugin needing to know how the pipeline is wired internally.
	Reprocess(ctx context.Context, groups []*record.EventGroup, inputIndex int) error
}

// GlobalOptions are the pipeline-wide knobs that plugins consult instead
// of hard-coding behavior (spec.md §4.7).
type GlobalOptions struct {
	// TimestampNanos, when true, preserves sub-second precision when
	// plugins stamp events; otherwise timestamps are second-granular.
	TimestampNanos bool

	// LegacyContentTag makes delimiter-style processors store the raw
	// pre-parse content under a fixed legacy key instead of dropping it.
	LegacyContentTag bool

	// DefaultProcessPriority seeds the process queue priority used when
	// a pipeline's specification does not set one explicitly.
	DefaultProcessPriority int
}

// Alarm is a data-only incident record; pipelines and plugins raise
// alarms through Context.Alarm, and the caller decides how (or whether)
// to transport them — no alarm transport lives in this package.
type Alarm struct {
	Pipeline  string
	Component string
	Level     string
	Message   string
	Time      time.Time
}

// AlarmSink receives Alarm values raised by a pipeline or its plugins.
type AlarmSink interface {
	Raise(a Alarm)
}

// Context is handed to every native plugin's Init call. It is built once
// during Pipeline.Init and never mutated afterward, so it is safe to read
// from any goroutine without synchronization.
type Context struct {
	// Name is the owning pipeline's configuration name.
	Name string

	// CreateTime is when the owning pipeline finished Init.
	CreateTime time.Time

	Project  string
	Logstore string
	Region   string

	// Identity is the enrichment pack (service/env/node/region, ...)
	// attached to every log line this pipeline's plugins emit through
	// Logger. Runtime builders typically populate it via
	// apis/context.Static or apis/context.Chain.
	Identity dlogctx.Pack

	Global GlobalOptions

	// ProcessQueueKey is the key this pipeline's process queue is
	// registered under (apis/queue.KeyManager).
	ProcessQueueKey queue.Key

	// Logger is the implementation-agnostic structured logger contract
	// (dirpx.dev/dlog/apis.Logger); runtime/zaplog supplies the
	// zap-backed implementation plugins actually receive.
	Logger dlogapis.Logger
	Alarm  AlarmSink

	// Handle lets a plugin ask its pipeline to rebuild inner state
	// (e.g. re-run Process on replayed groups) without holding a raw
	// *pipeline back-pointer, which would create an import cycle between
	// apis/pipeline and apis/pipeline/pcontext (spec.md §9 design note).
	Handle Handle
}
