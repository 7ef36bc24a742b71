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

// LogField is one key/value pair of a log Event. Value is always a byte
// slice: either a view into the owning EventGroup's SourceBuffer (or a
// caller-owned slice stored via SetContentNoCopy), or nil/empty when Key
// carries no value.
type LogField struct {
	Key   string
	Value []byte
}

// LogPayload is the ordered mapping of a KindLog Event. Order is
// preserved end to end: testable property 2 in spec.md §8 requires that
// the key sequence after Process equals the composition of processor
// Apply functions applied in declared order, which only holds if nothing
// along the way silently reorders or dedupes keys.
type LogPayload struct {
	Fields []LogField
}

// Get returns the value for the first field matching key and whether it
// was found. Linear scan: log payloads are small (single-digit to
// low-double-digit field counts), so this is cheaper and simpler than a
// map that would also have to preserve insertion order.
func (p LogPayload) Get(key string) ([]byte, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set overwrites the first field matching key, or appends a new one if
// none exists. Used by processors that enrich/replace a single key
// in place.
func (p *LogPayload) Set(key string, value []byte) {
	for i := range p.Fields {
		if p.Fields[i].Key == key {
			p.Fields[i].Value = value
			return
		}
	}
	p.Fields = append(p.Fields, LogField{Key: key, Value: value})
}

// Keys returns the ordered list of field keys, used by tests asserting
// invariant 2 (key-sequence equality after Process).
func (p LogPayload) Keys() []string {
	if len(p.Fields) == 0 {
		return nil
	}
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Key
	}
	return out
}
