package json

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"dirpx.dev/dlog/apis/record"
	"dirpx.dev/dlog/runtime/encoder"
	"github.com/stretchr/testify/require"
)

func TestEncoder_EncodesLogFields(t *testing.T) {
	enc := New(encoder.Options{})

	g := record.NewEventGroup()
	ev := record.Event{Kind: record.KindLog}
	ev.SetTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	g.SetContent(&ev, "msg", []byte("hello"))
	g.SetContent(&ev, "host", []byte("box-1"))

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(g, &ev, &buf))

	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\n"))
	require.Contains(t, out, `"msg":"hello"`)
	require.Contains(t, out, `"host":"box-1"`)
}

func TestEncoder_EncodesRawFallback(t *testing.T) {
	enc := New(encoder.Options{})

	g := record.NewEventGroup()
	ev := record.Event{Kind: record.KindRaw, Raw: []byte("unparsed line")}

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(g, &ev, &buf))
	require.Contains(t, buf.String(), "unparsed line")
}

func TestEncoder_AppendNewlineFalse(t *testing.T) {
	no := false
	enc := New(encoder.Options{AppendNewline: &no})

	g := record.NewEventGroup()
	ev := record.Event{Kind: record.KindRaw, Raw: []byte("x")}

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(g, &ev, &buf))
	require.False(t, strings.HasSuffix(buf.String(), "\n"))
}
