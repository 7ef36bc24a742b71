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

package configsource

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"dirpx.dev/dlog/apis/extended"
)

// nodeToValue walks a decoded yaml.Node into the generic extended.Value
// tree pipeline.Config.FromTree expects. A pipeline entry's "detail" is
// plugin-specific and has no fixed Go shape, so the whole subtree below
// "pipelines.<name>" is kept generic rather than decoded into tagged
// structs, the same way Step.UnmarshalYAML decodes a discriminator field
// first and only then commits to a concrete shape — here every node
// stays generic, since nothing about a plugin's "detail" lets us predict
// which struct it belongs to ahead of the plugin's own registry lookup.
func nodeToValue(n *yaml.Node) (extended.Value, error) {
	if n == nil {
		return extended.Value{}, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return extended.Value{}, nil
		}
		return nodeToValue(n.Content[0])
	case yaml.AliasNode:
		return nodeToValue(n.Alias)
	case yaml.MappingNode:
		obj := make(map[string]extended.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := nodeToValue(n.Content[i+1])
			if err != nil {
				return extended.Value{}, fmt.Errorf("%s: %w", key, err)
			}
			obj[key] = val
		}
		return extended.Value{Object: obj}, nil
	case yaml.SequenceNode:
		arr := make([]extended.Value, 0, len(n.Content))
		for i, item := range n.Content {
			val, err := nodeToValue(item)
			if err != nil {
				return extended.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, val)
		}
		return extended.Value{Array: arr}, nil
	case yaml.ScalarNode:
		var s any
		if err := n.Decode(&s); err != nil {
			return extended.Value{}, err
		}
		return extended.Value{Scalar: s}, nil
	default:
		return extended.Value{}, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}
