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

// Package zaplog is the zap-backed implementation of apis.Logger. It is
// the concrete type a pipeline builder assigns to pcontext.Context.Logger
// so plugins get real structured logging while only ever depending on
// the vendor-neutral apis.Logger contract.
package zaplog

import (
	"context"

	dlogapis "dirpx.dev/dlog/apis"
	dlogctx "dirpx.dev/dlog/apis/context"
	"dirpx.dev/dlog/apis/field"
	"dirpx.dev/dlog/apis/level"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger adapts a *zap.Logger to apis.FieldLogger/apis.ContextLogger.
// Pre-bound fields and a pre-bound extractor both travel on the value,
// so WithFields/WithContext are cheap, allocation-light derivations
// rather than rebuilds of the underlying zap core.
type Logger struct {
	base      *zap.Logger
	extractor dlogctx.Extractor // nil => no context enrichment
	bound     []field.Field
}

var (
	_ dlogapis.Logger       = (*Logger)(nil)
	_ dlogapis.FieldLogger  = (*Logger)(nil)
	_ dlogapis.ContextLogger = (*Logger)(nil)
)

// New wraps base. extractor may be nil, in which case Log/Info/... never
// enrich from ctx beyond the fields passed explicitly.
func New(base *zap.Logger, extractor dlogctx.Extractor) *Logger {
	return &Logger{base: base, extractor: extractor}
}

// Enabled reports whether lvl would actually be logged by the underlying
// zap core, letting callers skip expensive field construction.
func (l *Logger) Enabled(lvl level.Level) bool {
	return l.base.Core().Enabled(toZapLevel(lvl))
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Debug, msg, fields...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Info, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Warn, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Error, msg, fields...)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Fatal, msg, fields...)
}

// Log is the single path every severity-specific method funnels through:
// it merges the pre-bound fields, the context-extracted Pack (if any) and
// the call-site fields, in that priority order, then emits through zap.
func (l *Logger) Log(ctx context.Context, lvl level.Level, msg string, fields ...field.Field) {
	zf := make([]zap.Field, 0, len(l.bound)+len(fields)+12)
	zf = appendFields(zf, l.bound)
	if l.extractor != nil {
		zf = appendPack(zf, l.extractor.Extract(ctx))
	}
	zf = appendFields(zf, fields)

	l.base.Check(toZapLevel(lvl), msg).Write(zf...)
}

// WithFields returns a derived Logger that always includes fields, in
// addition to whatever the caller passes at each log call.
func (l *Logger) WithFields(fields ...field.Field) dlogapis.Logger {
	bound := make([]field.Field, 0, len(l.bound)+len(fields))
	bound = append(bound, l.bound...)
	bound = append(bound, fields...)
	return &Logger{base: l.base, extractor: l.extractor, bound: bound}
}

// WithContext returns a derived Logger that always logs the Pack
// extracted from ctx once, now, regardless of the ctx passed to later
// Log/Info/... calls — matching apis.ContextLogger's "pre-bound context"
// contract.
func (l *Logger) WithContext(ctx context.Context) dlogapis.Logger {
	pack := dlogctx.Empty()
	if l.extractor != nil {
		pack = l.extractor.Extract(ctx)
	}
	return &Logger{base: l.base, extractor: dlogctx.Static(pack), bound: l.bound}
}

func appendFields(zf []zap.Field, fields []field.Field) []zap.Field {
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	return zf
}

func appendPack(zf []zap.Field, p dlogctx.Pack) []zap.Field {
	if p.IsZero() {
		return zf
	}
	add := func(k, v string) []zap.Field {
		if v == "" {
			return zf
		}
		return append(zf, zap.String(k, v))
	}
	zf = add("correlation_id", p.CorrelationID)
	zf = add("trace_id", p.TraceID)
	zf = add("span_id", p.SpanID)
	zf = add("service", p.Service)
	zf = add("version", p.Version)
	zf = add("env", p.Env)
	zf = add("node_id", p.NodeID)
	zf = add("instance", p.Instance)
	zf = add("region", p.Region)
	zf = add("component", p.Component)
	zf = add("subsystem", p.Subsystem)
	zf = add("operation", p.Operation)
	return zf
}

func toZapLevel(lvl level.Level) zapcore.Level {
	switch lvl {
	case level.Trace, level.Debug:
		return zapcore.DebugLevel
	case level.Info:
		return zapcore.InfoLevel
	case level.Warn:
		return zapcore.WarnLevel
	case level.Error:
		return zapcore.ErrorLevel
	case level.Fatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
