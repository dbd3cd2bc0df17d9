package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, format logFormat) (*slog.Logger, *syncWriter) {
	w := newSyncWriter([]io.Writer{buf})
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: w,
		format: format,
	})
	return slog.New(h), w
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	log, w := newTestLogger(buf, formatKV)

	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	LogEvent(ctx, log.With("component", "carousel"), slog.LevelInfo, "swipe.applied",
		slog.String("status", "ok"),
		slog.Int("index", 2),
	)
	require.NoError(t, w.Flush())

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=carousel", "event=swipe.applied", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	require.GreaterOrEqual(t, len(tokens), len(expected))
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, expected prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	log, w := newTestLogger(buf, formatJSON)

	ctx := WithRID(context.Background(), "12:34:56")
	LogEvent(ctx, log, slog.LevelWarn, "rid.test", slog.Duration("duration", 1500*time.Microsecond))
	require.NoError(t, w.Flush())

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, `{"ts":`), line)
	assert.Contains(t, line, `"level":"WARN"`)
	assert.Contains(t, line, `"component":"app"`)
	assert.Contains(t, line, `"rid":"`+CompactRID("12:34:56")+`"`)
	assert.Contains(t, line, `"rid_full":"12:34:56"`)
	assert.Contains(t, line, `"duration_ms":2`)
}

func TestStructuredHandlerDropsEmptyAndBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	w := newSyncWriter([]io.Writer{buf})
	log := slog.New(newStructuredHandler(handlerConfig{level: slog.LevelInfo, writer: w, format: formatKV}))

	log.Debug("hidden")
	log.Info("shown", slog.String("plan", ""), slog.Group("req", slog.String("path", "/api")))
	require.NoError(t, w.Flush())

	line := strings.TrimSpace(buf.String())
	assert.NotContains(t, line, "hidden")
	assert.NotContains(t, line, "plan=")
	assert.Contains(t, line, "event=shown")
	assert.Contains(t, line, "req.path=/api")
}

func TestCompactRID(t *testing.T) {
	assert.Equal(t, "a.b.c", CompactRID("10:11:12"))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "1:x:2", CompactRID("1:x:2"))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "abc", SanitizeLimit("a\x00b\u200bc", 10))
	assert.Equal(t, "ab", SanitizeLimit("abcdef", 2))
	assert.Equal(t, "", SanitizeLimit("abc", 0))
}
