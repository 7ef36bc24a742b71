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

// Package router declares the per-pipeline predicate evaluator that
// decides which sink indices receive an EventGroup (spec.md §4.4).
package router

import "dirpx.dev/dlog/apis/record"

// Matcher is a pluggable predicate over group metadata and per-event
// content. The simplest matcher is a constant-true implementation
// (runtime/router.MatchAll).
type Matcher interface {
	// Match reports whether group should be delivered to the sink this
	// matcher is paired with.
	Match(group *record.EventGroup) bool

	// Name identifies the matcher kind for diagnostics.
	Name() string
}

// Entry pairs a Matcher with the index of the sink it routes to.
type Entry struct {
	Matcher   Matcher
	SinkIndex int
}

// Spec is the declarative router configuration: an ordered list of
// (matcher, sinkIndex) entries plus an optional default route.
//
// DefaultRoute is consulted only when zero Entries match; it resolves
// the "whether this should be a configurable default route is
// unspecified" open question from spec.md §9 by making the behavior
// configurable (nil preserves the historical silent-drop default).
type Spec struct {
	Entries      []Entry
	DefaultRoute []int
}

// Router evaluates a Spec against an EventGroup and returns the ordered,
// de-duplicated list of sink indices to deliver to.
type Router interface {
	// Route returns the target sink indices for group, in declaration
	// order with duplicates removed (first occurrence kept). An empty
	// result means the group is a routing miss.
	Route(group *record.EventGroup) []int
}
