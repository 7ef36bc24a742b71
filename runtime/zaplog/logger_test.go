package zaplog

import (
	"context"
	"testing"

	dlogctx "dirpx.dev/dlog/apis/context"
	"dirpx.dev/dlog/apis/field"
	"dirpx.dev/dlog/apis/level"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core), nil), logs
}

func TestLogger_LogEmitsFields(t *testing.T) {
	l, logs := newObserved()
	l.Info(context.Background(), "hello", field.New("k", "v"))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "hello", entries[0].Message)
	require.Equal(t, "v", entries[0].ContextMap()["k"])
}

func TestLogger_WithFieldsAreAlwaysIncluded(t *testing.T) {
	l, logs := newObserved()
	derived := l.WithFields(field.New("service", "router"))
	derived.Warn(context.Background(), "boom")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "router", entries[0].ContextMap()["service"])
}

func TestLogger_WithContextExtractsPackOnce(t *testing.T) {
	l, logs := newObserved()

	extractor := dlogctx.Static(dlogctx.Pack{Service: "auth", TraceID: "t-1"})
	l2 := New(l.base, extractor)

	derived := l2.WithContext(context.Background())
	derived.Error(context.Background(), "failed")

	entries := logs.All()
	require.Len(t, entries, 1)
	ctxMap := entries[0].ContextMap()
	require.Equal(t, "auth", ctxMap["service"])
	require.Equal(t, "t-1", ctxMap["trace_id"])
}

func TestLogger_EnabledRespectsCoreLevel(t *testing.T) {
	core, _ := observer.New(zapcore.WarnLevel)
	l := New(zap.New(core), nil)

	require.False(t, l.Enabled(level.Info))
	require.True(t, l.Enabled(level.Error))
}
