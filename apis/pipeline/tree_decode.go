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
	"fmt"

	"dirpx.dev/dlog/apis/extended"
)

// decodeConfigTree fills cfg from a generic configuration tree. It covers
// the scalar fields and the three plugin entry lists. Router is not
// decoded (apis/router.Matcher instances cannot be represented in a
// config tree): cfg.Router keeps whatever the caller set, and a "router"
// key in the tree is ignored.
func decodeConfigTree(t extended.Value, cfg *Config) error {
	if t.Object == nil {
		return fmt.Errorf("pipeline: config tree root must be an object")
	}

	if v, ok := t.Object["name"]; ok {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("pipeline: name: %w", err)
		}
		cfg.Name = s
	}
	if v, ok := t.Object["project"]; ok {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("pipeline: project: %w", err)
		}
		cfg.Project = s
	}
	if v, ok := t.Object["logstore"]; ok {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("pipeline: logstore: %w", err)
		}
		cfg.Logstore = s
	}
	if v, ok := t.Object["region"]; ok {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("pipeline: region: %w", err)
		}
		cfg.Region = s
	}
	if v, ok := t.Object["priority"]; ok {
		n, err := scalarInt(v)
		if err != nil {
			return fmt.Errorf("pipeline: priority: %w", err)
		}
		cfg.Priority = n
	}
	if v, ok := t.Object["exactly_once"]; ok {
		cfg.ExactlyOnce, _ = v.Scalar.(bool)
	}

	if v, ok := t.Object["global"]; ok && v.Object != nil {
		if b, ok := v.Object["timestamp_nanos"]; ok {
			cfg.Global.TimestampNanos, _ = b.Scalar.(bool)
		}
		if b, ok := v.Object["legacy_content_tag"]; ok {
			cfg.Global.LegacyContentTag, _ = b.Scalar.(bool)
		}
		if n, ok := v.Object["default_process_priority"]; ok {
			if i, err := scalarInt(n); err == nil {
				cfg.Global.DefaultProcessPriority = i
			}
		}
	}

	var err error
	if cfg.Inputs, err = decodeEntries(t.Object["inputs"]); err != nil {
		return fmt.Errorf("pipeline: inputs: %w", err)
	}
	if cfg.Processors, err = decodeEntries(t.Object["processors"]); err != nil {
		return fmt.Errorf("pipeline: processors: %w", err)
	}
	if cfg.Sinks, err = decodeEntries(t.Object["sinks"]); err != nil {
		return fmt.Errorf("pipeline: sinks: %w", err)
	}
	return nil
}

func decodeEntries(v extended.Value) ([]PluginEntry, error) {
	if v.Array == nil {
		return nil, nil
	}
	entries := make([]PluginEntry, 0, len(v.Array))
	for i, item := range v.Array {
		if item.Object == nil {
			return nil, fmt.Errorf("entry %d: expected object", i)
		}
		typ, err := scalarString(item.Object["type"])
		if err != nil {
			return nil, fmt.Errorf("entry %d: type: %w", i, err)
		}
		name, _ := scalarString(item.Object["name"])
		entries = append(entries, PluginEntry{
			Type:   typ,
			Name:   name,
			Detail: item.Object["detail"],
		})
	}
	return entries, nil
}

func scalarString(v extended.Value) (string, error) {
	s, ok := v.Scalar.(string)
	if !ok {
		return "", fmt.Errorf("expected string scalar")
	}
	return s, nil
}

func scalarInt(v extended.Value) (int, error) {
	switch n := v.Scalar.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected numeric scalar")
	}
}
