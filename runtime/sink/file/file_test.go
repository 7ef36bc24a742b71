package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dirpx.dev/dlog/apis/pipeline/pcontext"
	"dirpx.dev/dlog/apis/record"
	asink "dirpx.dev/dlog/apis/sink"
	spolicy "dirpx.dev/dlog/apis/sink/policy"
	"github.com/stretchr/testify/require"
)

func newGroup(t *testing.T, msg string) *record.EventGroup {
	t.Helper()
	g := record.NewEventGroup()
	ev := record.Event{Kind: record.KindLog}
	g.SetContent(&ev, "msg", []byte(msg))
	g.Events = append(g.Events, ev)
	return g
}

func TestSink_SendWritesImmediatelyWithoutBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s, err := Build(context.Background(), "f1", &asink.Specification{Name: "f1"})
	require.NoError(t, err)

	ok, err := s.Init(context.Background(), &Detail{Path: path}, &pcontext.Context{Name: "p1"}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Start(context.Background()))

	sent, err := s.Send(context.Background(), newGroup(t, "hello"))
	require.NoError(t, err)
	require.True(t, sent)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")

	require.NoError(t, s.Stop(context.Background(), false))
}

func TestSink_BatchesUntilFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s, err := Build(context.Background(), "f2", &asink.Specification{
		Name:  "f2",
		Batch: &spolicy.Batch{MaxEntries: 2},
	})
	require.NoError(t, err)

	ok, err := s.Init(context.Background(), &Detail{Path: path}, &pcontext.Context{Name: "p1"}, nil)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Send(context.Background(), newGroup(t, "one"))
	require.NoError(t, err)

	// Not yet flushed: file should still be empty.
	data, _ := os.ReadFile(path)
	require.Empty(t, strings.TrimSpace(string(data)))

	_, err = s.Send(context.Background(), newGroup(t, "two"))
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "one")
	require.Contains(t, string(data), "two")
}

func TestSink_FlushAllDrainsPartialBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s, err := Build(context.Background(), "f3", &asink.Specification{
		Name:  "f3",
		Batch: &spolicy.Batch{MaxEntries: 10},
	})
	require.NoError(t, err)

	ok, err := s.Init(context.Background(), &Detail{Path: path}, &pcontext.Context{Name: "p1"}, nil)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Send(context.Background(), newGroup(t, "lonely"))
	require.NoError(t, err)

	flushed, err := s.FlushAll(context.Background())
	require.NoError(t, err)
	require.True(t, flushed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "lonely")
}

func TestSink_InitRejectsWrongDetailType(t *testing.T) {
	s, err := Build(context.Background(), "f4", &asink.Specification{Name: "f4"})
	require.NoError(t, err)

	ok, err := s.Init(context.Background(), "not-a-detail", &pcontext.Context{Name: "p1"}, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSink_InitRejectsEmptyPath(t *testing.T) {
	s, err := Build(context.Background(), "f5", &asink.Specification{Name: "f5"})
	require.NoError(t, err)

	_, err = s.Init(context.Background(), &Detail{Path: ""}, &pcontext.Context{Name: "p1"}, nil)
	require.Error(t, err)
}

func TestSink_GetQueueKeyStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	s, err := Build(context.Background(), "f6", &asink.Specification{Name: "f6"})
	require.NoError(t, err)

	ok, err := s.Init(context.Background(), &Detail{Path: path}, &pcontext.Context{Name: "p1"}, nil)
	require.NoError(t, err)
	require.True(t, ok)

	k1 := s.GetQueueKey()
	k2 := s.GetQueueKey()
	require.Equal(t, k1, k2)
	require.NotZero(t, k1)
}
