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

package processqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
)

type fakeAvailability struct {
	full map[queue.Key]bool
}

func (f fakeAvailability) Available(key queue.Key) bool { return !f.full[key] }

func TestBoundedQueue_BackpressureOnFull(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.CreateOrUpdateBoundedQueue(1, 0))
	m.Enable(1)

	// Fill past the default capacity is slow; shrink by recreating as a
	// circular-sized bounded queue isn't possible, so push defaultBoundedCapacity
	// items then one more to observe Backpressured.
	for i := 0; i < defaultBoundedCapacity; i++ {
		outcome, err := m.Push(context.Background(), 1, record.NewEventGroup(), nil)
		require.NoError(t, err)
		require.Equal(t, queue.Pushed, outcome)
	}

	outcome, err := m.Push(context.Background(), 1, record.NewEventGroup(), nil)
	require.NoError(t, err)
	require.Equal(t, queue.Backpressured, outcome, "a full Bounded queue must reject rather than evict")
}

func TestCircularQueue_EvictsOldestOnFull(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.CreateOrUpdateCircularQueue(1, 0, 2))
	m.Enable(1)

	first := record.NewEventGroup()
	first.Meta = []record.Meta{{Key: "seq", Value: "1"}}
	second := record.NewEventGroup()
	second.Meta = []record.Meta{{Key: "seq", Value: "2"}}
	third := record.NewEventGroup()
	third.Meta = []record.Meta{{Key: "seq", Value: "3"}}

	outcome, err := m.Push(context.Background(), 1, first, nil)
	require.NoError(t, err)
	require.Equal(t, queue.Pushed, outcome)

	outcome, err = m.Push(context.Background(), 1, second, nil)
	require.NoError(t, err)
	require.Equal(t, queue.Pushed, outcome)

	outcome, err = m.Push(context.Background(), 1, third, nil)
	require.NoError(t, err)
	require.Equal(t, queue.Evicted, outcome)

	_, got, ok := m.Pop(context.Background())
	require.True(t, ok)
	v, _ := got.MetaValue("seq")
	require.Equal(t, "2", v, "the oldest entry (seq=1) must have been evicted")
}

func TestPush_UnknownKeyErrors(t *testing.T) {
	m := New(nil)
	_, err := m.Push(context.Background(), 99, record.NewEventGroup(), nil)
	require.Error(t, err)
}

func TestPop_GatedByFullDownstreamQueue(t *testing.T) {
	avail := fakeAvailability{full: map[queue.Key]bool{10: true}}
	m := New(avail)
	require.NoError(t, m.CreateOrUpdateBoundedQueue(1, 0))
	m.Enable(1)
	m.SetDownStreamQueues(1, []queue.Key{10})

	_, err := m.Push(context.Background(), 1, record.NewEventGroup(), nil)
	require.NoError(t, err)

	_, _, ok := m.Pop(context.Background())
	require.False(t, ok, "a process queue must be ineligible while any declared downstream sink queue is full")
}

func TestPop_DisabledQueueNeverEligible(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.CreateOrUpdateBoundedQueue(1, 0))
	// Deliberately left disabled (Enable is never called).
	_, err := m.Push(context.Background(), 1, record.NewEventGroup(), nil)
	require.NoError(t, err)

	_, _, ok := m.Pop(context.Background())
	require.False(t, ok)
}

func TestPush_AckInvokedForBoundedQueue(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.CreateOrUpdateBoundedQueue(1, 0))
	m.Enable(1)

	acked := false
	_, err := m.Push(context.Background(), 1, record.NewEventGroup(), func(error) { acked = true })
	require.NoError(t, err)
	require.True(t, acked)
}

func TestDeleteQueue_RemovesFromSchedulingBand(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.CreateOrUpdateBoundedQueue(1, 0))
	m.Enable(1)
	_, err := m.Push(context.Background(), 1, record.NewEventGroup(), nil)
	require.NoError(t, err)

	require.NoError(t, m.DeleteQueue(1))

	_, _, ok := m.Pop(context.Background())
	require.False(t, ok, "popping after DeleteQueue must find nothing for the removed key")
}
