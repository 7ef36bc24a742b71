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

// Package router implements apis/router.Router against a static Spec
// (spec.md §4.4).
package router

import (
	"dirpx.dev/dlog/apis/record"
	"dirpx.dev/dlog/apis/router"
)

// MatchAll is the constant-true Matcher: every group matches.
type MatchAll struct{}

func (MatchAll) Match(*record.EventGroup) bool { return true }
func (MatchAll) Name() string                  { return "match-all" }

type staticRouter struct {
	spec router.Spec
}

// New builds a Router that evaluates spec's entries in declaration
// order, deduplicating target sink indices while preserving first
// occurrence (spec.md §4.4).
func New(spec router.Spec) router.Router {
	return &staticRouter{spec: spec}
}

func (r *staticRouter) Route(group *record.EventGroup) []int {
	seen := make(map[int]bool, len(r.spec.Entries))
	out := make([]int, 0, len(r.spec.Entries))
	for _, e := range r.spec.Entries {
		if e.Matcher == nil || seen[e.SinkIndex] {
			continue
		}
		if e.Matcher.Match(group) {
			seen[e.SinkIndex] = true
			out = append(out, e.SinkIndex)
		}
	}
	if len(out) == 0 && len(r.spec.DefaultRoute) > 0 {
		out = append(out, r.spec.DefaultRoute...)
	}
	return out
}
