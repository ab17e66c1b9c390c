package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// readLoader returns the trimmed content of path plus the file named on its
// first line, if any, as the dependency set.
func readLoader(path string) Loader[string] {
	return func() (string, []string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", []string{path}, err
		}
		content := strings.TrimSpace(string(data))
		deps := []string{path}
		if dep, ok := strings.CutPrefix(content, "include "); ok {
			deps = append(deps, dep)
		}
		return content, deps, nil
	}
}

func startWatcher(t *testing.T, w *Watcher[string]) {
	t.Helper()
	require.NoError(t, w.Start())
	t.Cleanup(func() {
		assert.NoError(t, w.Stop())
	})
}

func TestWatcher_InitialLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.cfg")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	received := make(chan string, 1)
	w := NewWatcher(readLoader(path), newTestLogger(), WithDebounce[string](20*time.Millisecond))
	w.OnReload(func(v string) { received <- v })
	startWatcher(t, w)

	select {
	case v := <-received:
		assert.Equal(t, "first", v)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for initial load")
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.cfg")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	received := make(chan string, 4)
	w := NewWatcher(readLoader(path), newTestLogger(), WithDebounce[string](20*time.Millisecond))
	w.OnReload(func(v string) { received <- v })
	startWatcher(t, w)
	<-received

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))

	select {
	case v := <-received:
		assert.Equal(t, "second", v)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcher_FollowsDependencies(t *testing.T) {
	dir := t.TempDir()
	top := filepath.Join(dir, "top.cfg")
	otherDir := t.TempDir()
	dep := filepath.Join(otherDir, "dep.cfg")
	require.NoError(t, os.WriteFile(dep, []byte("dep"), 0o644))
	require.NoError(t, os.WriteFile(top, []byte("include "+dep), 0o644))

	var loads atomic.Int32
	w := NewWatcher(func() (string, []string, error) {
		loads.Add(1)
		return readLoader(top)()
	}, newTestLogger(), WithDebounce[string](20*time.Millisecond))
	startWatcher(t, w)

	assert.Len(t, w.Watched(), 2)

	require.NoError(t, os.WriteFile(dep, []byte("dep changed"), 0o644))
	assert.Eventually(t, func() bool { return loads.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cfg")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	var loads atomic.Int32
	w := NewWatcher(func() (string, []string, error) {
		loads.Add(1)
		return readLoader(path)()
	}, newTestLogger(), WithDebounce[string](20*time.Millisecond))
	startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), loads.Load())
}

func TestWatcher_ErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.cfg")

	errs := make(chan error, 1)
	w := NewWatcher(readLoader(path), newTestLogger(),
		WithErrorHandler[string](func(err error) { errs <- err }))
	called := false
	w.OnReload(func(string) { called = true })
	startWatcher(t, w)

	select {
	case err := <-errs:
		assert.True(t, errors.Is(err, os.ErrNotExist))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for error")
	}
	assert.False(t, called)
}

func TestWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.cfg")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o644))

	var loads atomic.Int32
	w := NewWatcher(func() (string, []string, error) {
		loads.Add(1)
		return readLoader(path)()
	}, newTestLogger(), WithDebounce[string](200*time.Millisecond))
	startWatcher(t, w)

	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('1' + i)}, 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return loads.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), loads.Load(), "burst of writes reloads once")
}

func TestWatcher_Unsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.cfg")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	var first, second atomic.Int32
	w := NewWatcher(readLoader(path), newTestLogger(), WithDebounce[string](20*time.Millisecond))
	unsub := w.OnReload(func(string) { first.Add(1) })
	w.OnReload(func(string) { second.Add(1) })
	startWatcher(t, w)

	unsub()
	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))

	assert.Eventually(t, func() bool { return second.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), first.Load())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := NewWatcher(readLoader("unused"), newTestLogger())
	assert.NoError(t, w.Stop())
}
