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

package router

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/dlog/apis/record"
	"dirpx.dev/dlog/apis/router"
)

type tagMatcher struct {
	name string
	tag  string
}

func (m tagMatcher) Name() string { return m.name }

func (m tagMatcher) Match(group *record.EventGroup) bool {
	v, ok := group.TagValue(m.tag)
	return ok && v != ""
}

type neverMatcher struct{}

func (neverMatcher) Name() string                  { return "never" }
func (neverMatcher) Match(*record.EventGroup) bool { return false }

func groupWithTag(key, value string) *record.EventGroup {
	g := record.NewEventGroup()
	g.Tags = []record.Meta{{Key: key, Value: value}}
	return g
}

func TestRoute_MatchAllSendsToEverySink(t *testing.T) {
	r := New(router.Spec{Entries: []router.Entry{
		{Matcher: MatchAll{}, SinkIndex: 0},
		{Matcher: MatchAll{}, SinkIndex: 1},
	}})
	require.Equal(t, []int{0, 1}, r.Route(record.NewEventGroup()))
}

func TestRoute_DeduplicatesSinkIndexKeepingFirstOccurrence(t *testing.T) {
	spec := router.Spec{Entries: []router.Entry{
		{Matcher: tagMatcher{tag: "team", name: "a"}, SinkIndex: 2},
		{Matcher: tagMatcher{tag: "team", name: "b"}, SinkIndex: 0},
		{Matcher: tagMatcher{tag: "team", name: "c"}, SinkIndex: 2},
	}}
	r := New(spec)
	got := r.Route(groupWithTag("team", "sre"))
	require.Equal(t, []int{2, 0}, got, "the second entry targeting sink 2 must be skipped, not reordered")
}

func TestRoute_NonMatchingEntrySkipped(t *testing.T) {
	spec := router.Spec{Entries: []router.Entry{
		{Matcher: neverMatcher{}, SinkIndex: 0},
		{Matcher: MatchAll{}, SinkIndex: 1},
	}}
	r := New(spec)
	require.Equal(t, []int{1}, r.Route(record.NewEventGroup()))
}

func TestRoute_FallsBackToDefaultRouteOnZeroMatches(t *testing.T) {
	spec := router.Spec{
		Entries:      []router.Entry{{Matcher: neverMatcher{}, SinkIndex: 0}},
		DefaultRoute: []int{3, 4},
	}
	r := New(spec)
	require.Equal(t, []int{3, 4}, r.Route(record.NewEventGroup()))
}

func TestRoute_DefaultRouteNotConsultedWhenAnyEntryMatches(t *testing.T) {
	spec := router.Spec{
		Entries:      []router.Entry{{Matcher: MatchAll{}, SinkIndex: 1}},
		DefaultRoute: []int{3, 4},
	}
	r := New(spec)
	require.Equal(t, []int{1}, r.Route(record.NewEventGroup()))
}

func TestRoute_NoEntriesNoDefaultIsRoutingMiss(t *testing.T) {
	r := New(router.Spec{})
	require.Empty(t, r.Route(record.NewEventGroup()))
}

func TestRoute_EntryWithNilMatcherIsSkipped(t *testing.T) {
	spec := router.Spec{Entries: []router.Entry{
		{Matcher: nil, SinkIndex: 0},
		{Matcher: MatchAll{}, SinkIndex: 1},
	}}
	r := New(spec)
	require.Equal(t, []int{1}, r.Route(record.NewEventGroup()))
}
