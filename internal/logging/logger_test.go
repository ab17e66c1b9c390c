package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLoggers(t *testing.T) {
	t.Helper()
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetLoggers(t)
	var buf bytes.Buffer
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"params": "debug",
			"api":    "warn",
		},
		Output: &buf,
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"params", true, true, true},
		{"api", false, false, true},
		{"lint", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()
			assert.Equal(t, tt.wantDebug, handler.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, handler.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.wantWarn, handler.Enabled(ctx, slog.LevelWarn))
		})
	}
}

func TestInitializeReconfiguresExistingLoggers(t *testing.T) {
	resetLoggers(t)
	var buf bytes.Buffer
	Initialize(Config{Level: "info", Output: &buf})

	before := GetLogger("watch")
	assert.False(t, before.Handler().Enabled(context.Background(), slog.LevelDebug))

	Initialize(Config{Level: "info", Modules: map[string]string{"watch": "debug"}, Output: &buf})
	after := GetLogger("watch")
	assert.True(t, after.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestLoggerWritesModuleAttribute(t *testing.T) {
	resetLoggers(t)
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	GetLogger("params").Debug("Reading config file", "path", "/etc/thor/base.cfg")

	assert.Contains(t, buf.String(), `"module":"params"`)
	assert.Contains(t, buf.String(), `"msg":"Reading config file"`)

	entries := GetBuffer().Tail(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "params", entries[0].Module)
	assert.Equal(t, "debug", entries[0].Level)
	assert.Equal(t, "/etc/thor/base.cfg", entries[0].Attributes["path"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLevel(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)
	assert.Empty(t, rb.Tail(0))

	for _, msg := range []string{"a", "b"} {
		rb.Write(LogEntry{Message: msg})
	}
	assert.Equal(t, 2, rb.Count())

	for _, msg := range []string{"c", "d", "e"} {
		rb.Write(LogEntry{Message: msg})
	}
	assert.Equal(t, 3, rb.Count())

	messages := func(entries []LogEntry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Message
		}
		return out
	}
	assert.Equal(t, []string{"c", "d", "e"}, messages(rb.Tail(0)))
	assert.Equal(t, []string{"d", "e"}, messages(rb.Tail(2)))
	assert.Equal(t, []string{"c", "d", "e"}, messages(rb.Tail(10)))
}

func TestBufferHandlerGroups(t *testing.T) {
	rb := NewRingBuffer(4)
	logger := slog.New(NewBufferHandler(rb, slog.LevelInfo)).With("module", "api")

	logger.WithGroup("request").Info("done", "status", 200, "error", errors.New("boom"))
	logger.Debug("filtered")

	entries := rb.Tail(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "api", entries[0].Module)
	assert.EqualValues(t, 200, entries[0].Attributes["request.status"])
	assert.Equal(t, "boom", entries[0].Attributes["request.error"])
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("unavailable") }

func TestMultiHandler(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer
	debugHandler := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "lint")
	logger.Debug("debug only")
	logger.Info("both")

	assert.Contains(t, debugBuf.String(), "debug only")
	assert.Contains(t, debugBuf.String(), "both")
	assert.NotContains(t, infoBuf.String(), "debug only")
	assert.Contains(t, infoBuf.String(), "module=lint")

	var okBuf bytes.Buffer
	okHandler := slog.NewTextHandler(&okBuf, nil)
	multi := NewMultiHandler(failingHandler{okHandler}, okHandler)
	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0))
	assert.Error(t, err)
	assert.Contains(t, okBuf.String(), "still written")
}

func TestJournalField(t *testing.T) {
	fields := map[string]string{}
	addJournalField(fields, nil, slog.String("module", "params"))
	addJournalField(fields, []string{"req"}, slog.Int("depth", 2))
	addJournalField(fields, nil, slog.Group("hdr", slog.Bool("y4m", true)))

	assert.Equal(t, "params", fields["MODULE"])
	assert.Equal(t, "2", fields["REQ_DEPTH"])
	assert.Equal(t, "true", fields["HDR_Y4M"])
}
