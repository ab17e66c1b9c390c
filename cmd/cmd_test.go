package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tubbz-alt/thor/internal/params"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSettings() *Settings {
	return &Settings{Debounce: 20 * time.Millisecond, Concurrency: 2}
}

func TestEncoderArgs(t *testing.T) {
	c := &cobra.Command{Use: "check", Run: func(*cobra.Command, []string) {}}
	var got []string
	c.Run = func(c *cobra.Command, args []string) { got = encoderArgs(c, args) }
	c.SetArgs([]string{"--", "-qp", "30", "-cf", "a.cfg"})
	require.NoError(t, c.Execute())
	assert.Equal(t, []string{"-qp", "30", "-cf", "a.cfg"}, got)
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "base.cfg", "-width 352 -height 288 -qp 30\n")

	var out bytes.Buffer
	err := runCheck(&out, testSettings().sessionOptions("cli"), []string{"-cf", cfg, "-qp", "22"}, true)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "ok: 352x288")
	assert.Contains(t, text, "qp 22")
	assert.Contains(t, text, "config files: ")
	assert.Regexp(t, `-qp\s+22\s+args`, text)
	assert.Regexp(t, `-width\s+352\s+\S*`+regexp.QuoteMeta(filepath.Base(cfg)), text)
}

func TestRunCheckFailure(t *testing.T) {
	var out bytes.Buffer
	err := runCheck(&out, testSettings().sessionOptions("cli"), []string{"-width", "100"}, false)
	require.Error(t, err)
	assert.True(t, params.IsValidationError(err))
	assert.Empty(t, out.String())
}

func TestRunDump(t *testing.T) {
	opts := testSettings().sessionOptions("cli")
	args := []string{"-qp", "27", "-HQperiod", "4", "-num_reorder_pics", "3"}

	tests := []struct {
		format string
		want   string
	}{
		{FormatConfig, "-qp 27\n"},
		{FormatTOML, "qp = 27"},
		{FormatJSON, `"qp": 27`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runDump(&out, opts, args, tt.format))
			assert.Contains(t, out.String(), tt.want)
		})
	}

	err := runDump(&bytes.Buffer{}, opts, args, "yaml")
	assert.ErrorContains(t, err, `unknown format "yaml"`)
}

func TestRunDumpReadsBack(t *testing.T) {
	dir := t.TempDir()
	opts := testSettings().sessionOptions("cli")

	var first bytes.Buffer
	require.NoError(t, runDump(&first, opts, []string{"-width", "640", "-height", "480", "-qp", "31"}, FormatConfig))
	dumped := writeFile(t, dir, "dumped.cfg", first.String())

	var second bytes.Buffer
	require.NoError(t, runDump(&second, opts, []string{"-cf", dumped}, FormatConfig))
	assert.Equal(t, first.String(), second.String())
}

func TestRunLint(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cfg", "-qp 30\n")
	bad := writeFile(t, dir, "bad.cfg", "-qp\n")

	var out bytes.Buffer
	failed, err := runLint(context.Background(), &out, testSettings(), []string{good, bad}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "ok    "+good)
	assert.Contains(t, out.String(), "FAIL  "+bad+": No value found for parameter: -qp")
	assert.Contains(t, out.String(), "2 file(s), 1 failed")

	out.Reset()
	failed, err = runLint(context.Background(), &out, testSettings(), []string{good}, nil, true)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Contains(t, out.String(), `"ok": true`)

	_, err = runLint(context.Background(), &out, testSettings(), nil, nil, false)
	assert.Error(t, err)
}

func TestRunRegistry(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRegistry(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Greater(t, len(lines), 10)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Regexp(t, `(?m)^-width\s+integer\s+1920\s+`, out.String())
	assert.Regexp(t, `(?m)^-cf\s+string\s+-\s+`, out.String())
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	dir := t.TempDir()
	inner := writeFile(t, dir, "inner.cfg", "-qp 30\n")
	outer := writeFile(t, dir, "outer.cfg", "-cf "+inner+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, &out, testSettings().sessionOptions("watch"), []string{"-cf", outer}, FormatConfig, 20*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "-qp 30\n")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(inner, []byte("-qp 40\n"), 0o644))
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "-qp 40\n")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolved.cfg")
	sink := &fileSink{path: path}

	_, err := sink.Write([]byte("-qp 30\n"))
	require.NoError(t, err)
	_, err = sink.Write([]byte("-qp 31\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-qp 31\n", string(data))
}
