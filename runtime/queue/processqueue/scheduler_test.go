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

func TestPop_RoundRobinsWithinABand(t *testing.T) {
	m := New(nil)
	const keyA, keyB queue.Key = 1, 2
	require.NoError(t, m.CreateOrUpdateBoundedQueue(keyA, 0))
	require.NoError(t, m.CreateOrUpdateBoundedQueue(keyB, 0))
	m.Enable(keyA)
	m.Enable(keyB)

	for i := 0; i < 2; i++ {
		_, err := m.Push(context.Background(), keyA, record.NewEventGroup(), nil)
		require.NoError(t, err)
		_, err = m.Push(context.Background(), keyB, record.NewEventGroup(), nil)
		require.NoError(t, err)
	}

	var order []queue.Key
	for i := 0; i < 4; i++ {
		key, _, ok := m.Pop(context.Background())
		require.True(t, ok)
		order = append(order, key)
	}
	require.Equal(t, []queue.Key{keyA, keyB, keyA, keyB}, order)
}

func TestPop_StarvationGuardYieldsToNextBand(t *testing.T) {
	m := New(nil)
	const low, high queue.Key = 1, 2
	require.NoError(t, m.CreateOrUpdateBoundedQueue(low, 0))
	require.NoError(t, m.CreateOrUpdateBoundedQueue(high, 1))
	m.Enable(low)
	m.Enable(high)

	for i := 0; i < StarvationGuard+1; i++ {
		_, err := m.Push(context.Background(), low, record.NewEventGroup(), nil)
		require.NoError(t, err)
	}
	_, err := m.Push(context.Background(), high, record.NewEventGroup(), nil)
	require.NoError(t, err)

	for i := 0; i < StarvationGuard; i++ {
		key, _, ok := m.Pop(context.Background())
		require.True(t, ok)
		require.Equal(t, low, key, "pop %d should still favor the lowest-priority band", i)
	}

	key, _, ok := m.Pop(context.Background())
	require.True(t, ok)
	require.Equal(t, high, key, "after StarvationGuard consecutive pops from the low band, the next pop must yield to the higher band even though the low band still has items")
}

func TestPop_EmptyManagerReturnsFalse(t *testing.T) {
	m := New(nil)
	_, _, ok := m.Pop(context.Background())
	require.False(t, ok)
}
