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

// Package internalzap hosts small utilities for adapting dlog's Event
// model to zap encoders. It provides a compact, deterministic mapping
// from record.Event to zapcore types, plus shared configuration helpers
// used by the console and json encoders.
package internalzap

import (
	"sort"

	"dirpx.dev/dlog/apis/record"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------
// Encoder configuration & options
// -----------------------------------------------------------------------------

// DefaultEncoderConfig returns a minimal, stable zap EncoderConfig shared by
// both console and JSON adapters. Caller/name/stack keys are left empty:
// dlog controls those concerns at higher layers, not at the event codec.
func DefaultEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "",
		CallerKey:      "",
		MessageKey:     "msg",
		StacktraceKey:  "",
		LineEnding:     "\n", // final framing normalized by NormalizeLineEnding
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// PickLineEnding converts an optional boolean into a concrete line ending.
// Semantics:
//   - nil or true  => "\n" (NDJSON-style framing)
//   - false        => ""   (no trailing newline)
func PickLineEnding(p *bool) string {
	if p == nil || *p {
		return "\n"
	}
	return ""
}

// NormalizeLineEnding enforces the desired trailing newline policy on the
// encoded byte slice, independent of zap's internal defaults.
func NormalizeLineEnding(b []byte, ending string) []byte {
	if ending == "\n" {
		if len(b) > 0 && b[len(b)-1] == '\n' {
			return b
		}
		out := make([]byte, 0, len(b)+1)
		out = append(out, b...)
		return append(out, '\n')
	}
	// ending == ""
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b[:len(b)-1]
	}
	return b
}

// -----------------------------------------------------------------------------
// Event -> zap entry mapping
// -----------------------------------------------------------------------------

// Synthetic field names used when an event's kind doesn't naturally
// split into zap's message/fields shape.
const (
	rawFieldKey   = "raw"
	metricNameKey = "metric"
	metricTagsKey = "tags"
)

// BuildEntry maps ev onto a zapcore.Entry. Every Event is logged at Info:
// record.Event carries no independent severity (apis/level.Level belongs
// to the operational logger, not the data plane), so encoders treat every
// kind uniformly and let the fields carry the distinguishing detail.
func BuildEntry(ev *record.Event) zapcore.Entry {
	return zapcore.Entry{
		Time:  ev.Time(),
		Level: zapcore.InfoLevel,
	}
}

// BuildFields converts ev's kind-specific payload into a slice of zap
// fields. Log fields keep their payload order; multi-value metric keys
// are emitted sorted.
func BuildFields(ev *record.Event) []zapcore.Field {
	switch ev.Kind {
	case record.KindLog:
		return logFields(ev.Log)
	case record.KindMetric:
		return metricFields(ev.Metric)
	case record.KindRaw:
		return []zapcore.Field{zap.String(rawFieldKey, string(ev.Raw))}
	default:
		return nil
	}
}

func logFields(p record.LogPayload) []zapcore.Field {
	if len(p.Fields) == 0 {
		return nil
	}
	out := make([]zapcore.Field, 0, len(p.Fields))
	for _, f := range p.Fields {
		out = append(out, zap.String(f.Key, string(f.Value)))
	}
	return out
}

func metricFields(p record.MetricPayload) []zapcore.Field {
	out := make([]zapcore.Field, 0, 2+len(p.Tags))
	out = append(out, zap.String(metricNameKey, p.Name))
	switch p.Value.Kind {
	case record.MetricValueSingle:
		out = append(out, zap.Float64("value", p.Value.Single))
	case record.MetricValueMulti:
		keys := make([]string, 0, len(p.Value.Multi))
		for k := range p.Value.Multi {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Float64(k, p.Value.Multi[k]))
		}
	}
	if len(p.Tags) > 0 {
		tags := make(map[string]interface{}, len(p.Tags))
		for _, t := range p.Tags {
			tags[t.Key] = t.Value
		}
		out = append(out, zap.Any(metricTagsKey, tags))
	}
	return out
}
