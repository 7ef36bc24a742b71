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

// Package sinkqueue implements apis/queue.SinkQueueManager: the per-sink
// bounded egress queue, its worker pool and the Available() signal the
// process queue layer gates on (spec.md §4.3.3).
package sinkqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"dirpx.dev/dlog/apis/queue"
	"dirpx.dev/dlog/apis/record"
	"dirpx.dev/dlog/apis/sink/policy"
)

const defaultConcurrency = 1

type queueEntry struct {
	spec    queue.SinkQueueSpec
	send    func(ctx context.Context, group *record.EventGroup) (bool, error)
	ch      chan *record.EventGroup
	pending atomic.Int64
	cancel  context.CancelFunc
	eg      *errgroup.Group
}

// Manager is the concrete, concurrency-safe SinkQueueManager.
type Manager struct {
	mu      sync.RWMutex
	entries map[queue.Key]*queueEntry
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{entries: make(map[queue.Key]*queueEntry)}
}

func (m *Manager) CreateQueue(key queue.Key, spec queue.SinkQueueSpec, send func(ctx context.Context, group *record.EventGroup) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.entries[key]; ok {
		prev.cancel()
	}

	concurrency := spec.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	capacity := spec.Capacity
	if capacity <= 0 {
		capacity = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &queueEntry{
		spec:   spec,
		send:   send,
		ch:     make(chan *record.EventGroup, capacity),
		cancel: cancel,
	}
	eg, egCtx := errgroup.WithContext(ctx)
	e.eg = eg
	for i := 0; i < concurrency; i++ {
		eg.Go(func() error {
			e.worker(egCtx)
			return nil
		})
	}
	m.entries[key] = e
	return nil
}

func (e *queueEntry) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case group, ok := <-e.ch:
			if !ok {
				return
			}
			e.sendWithRetry(ctx, group)
			e.pending.Add(-1)
		}
	}
}

func (e *queueEntry) sendWithRetry(ctx context.Context, group *record.EventGroup) {
	retry := e.spec.Retry
	attempt := 0
	delay := time.Duration(0)
	if retry != nil && retry.Enable {
		delay = retry.Initial
	}
	for {
		ok, err := e.send(ctx, group)
		if ok && err == nil {
			return
		}
		if retry == nil || !retry.Enable || attempt >= retry.MaxRetries {
			return
		}
		attempt++
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * retry.Multiplier)
		if retry.Max > 0 && delay > retry.Max {
			delay = retry.Max
		}
	}
}

func (m *Manager) GetQueue(key queue.Key) (queue.SinkQueueSpec, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return queue.SinkQueueSpec{}, false
	}
	return e.spec, true
}

func (m *Manager) Push(ctx context.Context, key queue.Key, group *record.EventGroup) (queue.PushOutcome, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return queue.Backpressured, nil
	}

	e.pending.Add(1)

	if e.spec.Backpressure == policy.BackpressureBlock {
		select {
		case e.ch <- group:
			return queue.Pushed, nil
		case <-ctx.Done():
			e.pending.Add(-1)
			return queue.Backpressured, ctx.Err()
		}
	}

	select {
	case e.ch <- group:
		return queue.Pushed, nil
	default:
		e.pending.Add(-1)
		if e.spec.Backpressure == policy.BackpressureShed {
			return queue.Evicted, nil
		}
		return queue.Backpressured, nil
	}
}

// Available reports whether key's queue currently has room.
func (m *Manager) Available(key queue.Key) bool {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return len(e.ch) < cap(e.ch)
}

// FlushAll blocks until every queue's pending item count reaches zero or
// ctx is done, force-draining before shutdown (spec.md §4.6 Stop).
func (m *Manager) FlushAll(ctx context.Context) error {
	m.mu.RLock()
	entries := make([]*queueEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		allDrained := true
		for _, e := range entries {
			if e.pending.Load() > 0 {
				allDrained = false
				break
			}
		}
		if allDrained {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Manager) DeleteQueue(key queue.Key) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	e.cancel()
	close(e.ch)
	_ = e.eg.Wait()
	return nil
}

var _ queue.SinkQueueManager = (*Manager)(nil)
