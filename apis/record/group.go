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

// Meta carries group-level identity (e.g. resolved file path, source
// host, topic) as an ordered key/value list — small enough that a plain
// slice beats a map for both allocation cost and deterministic iteration.
type Meta struct {
	Key   string
	Value string
}

// EventGroup is an ordered batch of Events that share group-level Meta
// and Tags and a single owning SourceBuffer.
//
// EventGroup is move-only in spirit: callers should treat a group as
// having one logical owner at a time. When a group must be handed to
// more than one consumer (the Router's fan-out case), Copy produces a
// structurally identical group with its own independent buffer so the
// two owners never alias memory.
type EventGroup struct {
	Events []Event
	Meta   []Meta
	Tags   []Meta

	buf *SourceBuffer
}

// NewEventGroup creates an empty group with a fresh SourceBuffer.
func NewEventGroup() *EventGroup {
	return &EventGroup{buf: NewSourceBuffer()}
}

// Buffer returns the group's owning SourceBuffer, allocating one lazily
// if the group was constructed via the zero value (e.g. unmarshaled).
func (g *EventGroup) Buffer() *SourceBuffer {
	if g.buf == nil {
		g.buf = NewSourceBuffer()
	}
	return g.buf
}

// AllocateStringBuffer reserves n bytes in the group's buffer. See
// SourceBuffer.AllocateStringBuffer.
func (g *EventGroup) AllocateStringBuffer(n int) []byte {
	return g.Buffer().AllocateStringBuffer(n)
}

// CopyString copies s into the group's buffer. See
// SourceBuffer.CopyString.
func (g *EventGroup) CopyString(s []byte) []byte {
	return g.Buffer().CopyString(s)
}

// SetContent copies value into the group's buffer and stores the result
// under key in the log payload of ev, overwriting any existing value for
// that key.
func (g *EventGroup) SetContent(ev *Event, key string, value []byte) {
	ev.Log.Set(key, g.CopyString(value))
}

// SetContentNoCopy stores the caller-owned view directly under key,
// without copying it into the group's buffer. The caller guarantees
// value's backing memory outlives the group; calling Copy() on the group
// afterwards is always safe because Copy deep-copies every field value
// regardless of where it originally came from.
func (g *EventGroup) SetContentNoCopy(ev *Event, key string, value []byte) {
	ev.Log.Set(key, value)
}

// MetaValue returns the group-level meta value for key, if present.
func (g *EventGroup) MetaValue(key string) (string, bool) {
	for _, m := range g.Meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// TagValue returns the group-level tag value for key, if present.
func (g *EventGroup) TagValue(key string) (string, bool) {
	for _, t := range g.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Copy produces a structurally identical EventGroup backed by an
// independent SourceBuffer: every log field value and raw payload is
// re-copied into the new buffer, so the two groups never alias memory —
// this holds for SetContentNoCopy-stored fields too, since Copy never
// assumes a value came from the original buffer's slab.
func (g *EventGroup) Copy() *EventGroup {
	out := &EventGroup{
		buf:  NewSourceBuffer(),
		Meta: append([]Meta(nil), g.Meta...),
		Tags: append([]Meta(nil), g.Tags...),
	}
	out.Events = make([]Event, len(g.Events))
	for i, ev := range g.Events {
		out.Events[i] = ev
		switch ev.Kind {
		case KindLog:
			fields := make([]LogField, len(ev.Log.Fields))
			for j, f := range ev.Log.Fields {
				fields[j] = LogField{Key: f.Key, Value: out.buf.CopyString(f.Value)}
			}
			out.Events[i].Log = LogPayload{Fields: fields}
		case KindRaw:
			if len(ev.Raw) > 0 {
				out.Events[i].Raw = out.buf.CopyString(ev.Raw)
			}
		case KindMetric:
			// Metric payloads carry scalars and strings by value; nothing
			// aliases the source buffer, so the shallow copy from the
			// struct assignment above is already independent. Tags are
			// copied defensively since the slice header is shared until
			// then.
			out.Events[i].Metric.Tags = append([]MetricTag(nil), ev.Metric.Tags...)
			if ev.Metric.Value.Kind == MetricValueMulti {
				m := make(map[string]float64, len(ev.Metric.Value.Multi))
				for k, v := range ev.Metric.Value.Multi {
					m[k] = v
				}
				out.Events[i].Metric.Value.Multi = m
			}
		case KindTraceSpan:
			// TraceSpan currently reuses the Log payload shape for its
			// attributes; same rule as KindLog applies.
			fields := make([]LogField, len(ev.Log.Fields))
			for j, f := range ev.Log.Fields {
				fields[j] = LogField{Key: f.Key, Value: out.buf.CopyString(f.Value)}
			}
			out.Events[i].Log = LogPayload{Fields: fields}
		}
	}
	return out
}

// Len returns the number of events currently in the group.
func (g *EventGroup) Len() int { return len(g.Events) }

// Append adds an event to the group.
func (g *EventGroup) Append(ev Event) {
	g.Events = append(g.Events, ev)
}
