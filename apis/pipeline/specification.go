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

package pipeline

import (
	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/router"
)

// Config is a declarative description of how a pipeline should be
// assembled (spec.md §4.6). It does not execute anything; runtime code
// takes a Config and a Builder produces the executable Pipeline.
//
// Init order is fixed regardless of field declaration order: Inputs,
// then Processors, then Sinks, then Router. Global is read before any of
// them, when the Context every plugin receives is built. Config has no
// aggregator or extension lists, so neither kind of entry takes part in
// Init.
type Config struct {
	// Name is this pipeline's configuration name; also the key its
	// process queue and extended sub-pipelines are registered under.
	Name string

	Project  string
	Logstore string
	Region   string

	Inputs     []PluginEntry
	Processors []PluginEntry
	Sinks      []PluginEntry

	// Router describes how groups are fanned out across Sinks once both
	// have been resolved.
	Router router.Spec

	// Global seeds the GlobalOptions every plugin's Context carries.
	Global pcontext.GlobalOptions

	// Priority is the process queue's scheduling priority (0 = highest).
	// Zero defers to Global.DefaultProcessPriority.
	Priority int

	// ExactlyOnce requests the constrained configuration spec.md §9
	// describes: non-duplicated delivery of file-tailed records to a
	// canonical remote sink. The Builder rejects it at Init unless every
	// input is file-tailing, every sink is canonical, and no plugin
	// required extended-runtime delegation (spec.md §8 invariant 5).
	ExactlyOnce bool
}

// FromTree decodes a Config from a generic configuration tree (produced
// by decoding YAML via gopkg.in/yaml.v3 in runtime/configsource). Kept as
// a method on Config, not a free function, so callers can express
// "decode into a Config" without importing the tree type directly in
// call sites that already have one handy.
func (c *Config) FromTree(t extended.Value) error {
	return decodeConfigTree(t, c)
}
