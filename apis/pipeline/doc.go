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

// Package pipeline declares the high-level contracts for building,
// running and tearing down a dlog pipeline: an ordered set of inputs,
// processors, a router and sinks that event groups flow through.
//
// Config is the declarative side: a set of PluginEntry lists plus routing
// and global options, typically decoded from a configuration tree
// (apis/extended.Value) via Config.FromTree. Pipeline is the executable
// side, carried through Init -> Start -> {Process, Send, FlushBatch} ->
// Stop (spec.md §4.6). Builder turns one into the other.
//
// This package does not import apis/pipeline/abi or apis/sink: it only
// fixes the declarative shape and the executable lifecycle contract. It
// does import apis/pipeline/pcontext, for GlobalOptions and for the small
// Handle capability (defined there, aliased here) that plugin-facing
// packages use to talk back to a running pipeline without a direct
// dependency on this package.
package pipeline
