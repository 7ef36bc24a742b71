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

// Package configsource implements apis/provider.Provider by reading a
// single YAML document from disk (gopkg.in/yaml.v3). Every field outside
// "pipelines" decodes through ordinary struct tags; a pipeline entry's
// detail is plugin-specific, so the subtree under each pipeline name is
// kept as a generic apis/extended.Value and handed to
// pipeline.Config.FromTree instead.
package configsource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dirpx.dev/dlog/apis/extended"
	"dirpx.dev/dlog/apis/field"
	"dirpx.dev/dlog/apis/level"
	"dirpx.dev/dlog/apis/pipeline"
	"dirpx.dev/dlog/apis/provider"
)

// document mirrors the top-level shape of a dlog YAML config file.
// MinLevel and Fields decode directly: level.Level implements
// encoding.TextUnmarshaler and field.Field carries no plugin-specific
// payload, so yaml.v3's default tag-free field matching is enough for
// both. Pipelines is kept as raw nodes so each entry's detail can be
// converted through nodeToValue instead of forced into a fixed struct.
type document struct {
	MinLevel *level.Level         `yaml:"minLevel"`
	Fields   []field.Field        `yaml:"fields"`
	Pipelines map[string]yaml.Node `yaml:"pipelines"`
}

// File is a provider.Provider backed by a single YAML file on disk.
type File struct {
	path     string
	priority int
}

// NewFile constructs a File provider for path at the given override
// priority (apis/provider.Provider.Priority).
func NewFile(path string, priority int) *File {
	return &File{path: path, priority: priority}
}

// Name implements provider.Provider.
func (f *File) Name() string { return "file:" + f.path }

// Priority implements provider.Provider.
func (f *File) Priority() int { return f.priority }

// Snapshot implements provider.Provider. The version is the file
// content's sha256, so two reads of an unchanged file always compare
// equal without depending on filesystem mtime granularity.
func (f *File) Snapshot(ctx context.Context) (*provider.Specification, string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, "", fmt.Errorf("configsource: read %s: %w", f.path, err)
	}
	spec, err := decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("configsource: %s: %w", f.path, err)
	}
	sum := sha256.Sum256(data)
	return spec, hex.EncodeToString(sum[:]), nil
}

// Watch implements provider.Provider. File carries no filesystem-change
// notifier, so it reports unsupported per the interface's doc comment;
// callers fall back to polling Snapshot on their own interval.
func (f *File) Watch(ctx context.Context) (provider.Stream, error) {
	return nil, nil
}

var _ provider.Provider = (*File)(nil)

func decode(data []byte) (*provider.Specification, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	spec := &provider.Specification{MinLevel: doc.MinLevel, Fields: doc.Fields}
	if len(doc.Pipelines) > 0 {
		spec.Pipelines = make(map[string]pipeline.Config, len(doc.Pipelines))
		for name, node := range doc.Pipelines {
			node := node
			tree, err := nodeToValue(&node)
			if err != nil {
				return nil, fmt.Errorf("pipeline %q: %w", name, err)
			}
			if tree.Object == nil {
				tree.Object = make(map[string]extended.Value, 1)
			}
			if _, ok := tree.Object["name"]; !ok {
				tree.Object["name"] = extended.Value{Scalar: name}
			}
			var cfg pipeline.Config
			if err := cfg.FromTree(tree); err != nil {
				return nil, fmt.Errorf("pipeline %q: %w", name, err)
			}
			spec.Pipelines[name] = cfg
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return spec, nil
}
