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

// Package metrics holds the small set of internal counters spec.md §6
// calls out explicitly (parse_error_total, routing_misses, and the
// queue-outcome counters). These are process bookkeeping, not an
// observability transport, so they are plain atomic counters rather than
// a wired external metrics client — see DESIGN.md for why no pack
// dependency was a better fit than sync/atomic here.
package metrics

import "sync/atomic"

// Counters is a per-pipeline set of monotonically increasing counts.
// The zero value is ready to use.
type Counters struct {
	parseErrors    atomic.Int64
	routingMisses  atomic.Int64
	pushed         atomic.Int64
	backpressured  atomic.Int64
	evicted        atomic.Int64
	sinkSendFailed atomic.Int64
}

func (c *Counters) IncParseError()    { c.parseErrors.Add(1) }
func (c *Counters) IncRoutingMiss()   { c.routingMisses.Add(1) }
func (c *Counters) IncPushed()        { c.pushed.Add(1) }
func (c *Counters) IncBackpressured() { c.backpressured.Add(1) }
func (c *Counters) IncEvicted()       { c.evicted.Add(1) }
func (c *Counters) IncSinkSendFailed() { c.sinkSendFailed.Add(1) }

func (c *Counters) ParseErrors() int64    { return c.parseErrors.Load() }
func (c *Counters) RoutingMisses() int64  { return c.routingMisses.Load() }
func (c *Counters) Pushed() int64         { return c.pushed.Load() }
func (c *Counters) Backpressured() int64  { return c.backpressured.Load() }
func (c *Counters) Evicted() int64        { return c.evicted.Load() }
func (c *Counters) SinkSendFailed() int64 { return c.sinkSendFailed.Load() }
