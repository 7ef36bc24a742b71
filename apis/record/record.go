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

package record

import (
	"fmt"
	"time"
)

// Kind identifies the shape of an Event's payload.
type Kind uint8

const (
	// KindLog is a structured log line: an ordered key/value mapping.
	KindLog Kind = iota
	// KindMetric carries a single named measurement.
	KindMetric
	// KindTraceSpan carries a distributed-tracing span.
	KindTraceSpan
	// KindRaw is an uninterpreted byte payload (e.g. a line an input
	// could not parse and is passing through for a downstream parser).
	KindRaw
)

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindMetric:
		return "metric"
	case KindTraceSpan:
		return "trace-span"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is a single record flowing through a pipeline.
//
// Only the fields matching Kind are meaningful; the others are left at
// their zero value. This mirrors design note §9 ("variant event values
// should be a sum type with tagged variants, not a polymorphic class
// hierarchy") without resorting to an interface{} payload — each kind
// gets its own concrete, typed field.
type Event struct {
	// TimeUnix is the event time in whole seconds since the Unix epoch.
	TimeUnix int64
	// TimeNanos is the sub-second component, [0, 1e9). Optional: zero
	// means "second-granularity only", not "midnight".
	TimeNanos int32

	Kind Kind

	Log    LogPayload
	Metric MetricPayload
	Raw    []byte
}

// Time reconstructs the event timestamp as a time.Time in UTC.
func (e Event) Time() time.Time {
	return time.Unix(e.TimeUnix, int64(e.TimeNanos)).UTC()
}

// SetTime stores t as TimeUnix/TimeNanos.
func (e *Event) SetTime(t time.Time) {
	e.TimeUnix = t.Unix()
	e.TimeNanos = int32(t.Nanosecond())
}
