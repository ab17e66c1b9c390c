package api

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tubbz-alt/thor/internal/api/models"
	"github.com/Tubbz-alt/thor/internal/events"
	"github.com/Tubbz-alt/thor/internal/logging"
	"github.com/Tubbz-alt/thor/internal/params"
)

const testUser, testPass = "test", "secret"

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}
	ts := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postResolve(t *testing.T, ts *httptest.Server, body models.ResolveRequestData, auth bool) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/params/resolve", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.SetBasicAuth(testUser, testPass)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: testUser, AuthPassword: testPass})

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[models.HealthData](t, resp.Body)
	assert.Equal(t, "ok", body.Status)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "base.cfg")
	require.NoError(t, os.WriteFile(cfg, []byte("-width 352 -height 288\n-qp 30\n"), 0o644))

	ts := newTestServer(t, nil)
	resp := postResolve(t, ts, models.ResolveRequestData{Args: []string{"-cf", cfg, "-qp", "22"}}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[models.ResolveData](t, resp.Body)
	require.NotNil(t, body.Params)
	assert.Equal(t, 352, body.Params.Width)
	assert.Equal(t, 288, body.Params.Height)
	assert.Equal(t, 22, body.Params.QP)
	assert.Equal(t, params.SourceArgs, body.Origins["-qp"])
	assert.Len(t, body.Includes, 1)
	assert.Empty(t, body.Warnings)
	assert.Nil(t, body.Header)
}

func TestResolveErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name    string
		args    []string
		status  int
		message string
		code    string
	}{
		{
			name:    "unknown parameter",
			args:    []string{"-fast"},
			status:  http.StatusBadRequest,
			message: "Unknown parameter: -fast",
			code:    params.ErrCodeUnknownParameter,
		},
		{
			name:    "missing value",
			args:    []string{"-qp"},
			status:  http.StatusBadRequest,
			message: "No value found for parameter: -qp",
			code:    params.ErrCodeMissingValue,
		},
		{
			name:    "misaligned width",
			args:    []string{"-width", "100"},
			status:  http.StatusUnprocessableEntity,
			message: "Width and height must be a multiple of 8",
			code:    params.ErrCodeInvalidParameters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postResolve(t, ts, models.ResolveRequestData{Args: tt.args}, false)
			assert.Equal(t, tt.status, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.message)
			assert.Contains(t, string(raw), tt.code)
		})
	}
}

func TestResolveHidesConfigFileContents(t *testing.T) {
	root := t.TempDir()
	secret := filepath.Join(root, "secret.env")
	require.NoError(t, os.WriteFile(secret, []byte("DB_PASSWORD=hunter2\n"), 0o600))

	tests := []struct {
		name string
		opts *Options
		args []string
	}{
		{"without include root", nil, []string{"-cf", secret}},
		{"relative to include root", &Options{Session: params.Options{IncludeRoot: root}}, []string{"-cf", "secret.env"}},
		{"nested include", nil, []string{"-cf", writeConfig(t, root, "outer.cfg", "-qp 30\n-cf \""+secret+"\"\n")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.opts)
			resp := postResolve(t, ts, models.ResolveRequestData{Args: tt.args}, false)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "hunter2")
			assert.NotContains(t, string(raw), "DB_PASSWORD")
			assert.Contains(t, string(raw), params.ErrCodeUnknownParameter)
			assert.Contains(t, string(raw), "secret.env")
		})
	}
}

func TestResolveIncludeRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "base.cfg", "-width 352 -height 288\n")
	outside := writeConfig(t, t.TempDir(), "private.cfg", "-qp 12\n")

	ts := newTestServer(t, &Options{Session: params.Options{IncludeRoot: root}})

	resp := postResolve(t, ts, models.ResolveRequestData{Args: []string{"-cf", "base.cfg"}}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[models.ResolveData](t, resp.Body)
	assert.Equal(t, 352, body.Params.Width)

	for _, path := range []string{outside, "../" + filepath.Base(filepath.Dir(outside)) + "/private.cfg", "/nonexistent/thor.cfg"} {
		resp := postResolve(t, ts, models.ResolveRequestData{Args: []string{"-cf", path}}, false)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), params.ErrCodePathOutsideRoot, path)
	}
}

func TestResolveRequiresAuth(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: testUser, AuthPassword: testPass})
	args := models.ResolveRequestData{Args: []string{"-qp", "30"}}

	resp := postResolve(t, ts, args, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")

	resp = postResolve(t, ts, args, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthQueryParameter(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: testUser, AuthPassword: testPass})

	tests := []struct {
		name   string
		creds  string
		status int
	}{
		{"valid", base64.StdEncoding.EncodeToString([]byte(testUser + ":" + testPass)), http.StatusOK},
		{"wrong password", base64.StdEncoding.EncodeToString([]byte(testUser + ":nope")), http.StatusUnauthorized},
		{"no separator", base64.StdEncoding.EncodeToString([]byte(testUser)), http.StatusUnauthorized},
		{"not base64", "!!!", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/params/registry?auth=" + tt.creds)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRegistry(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/params/registry")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[models.RegistryData](t, resp.Body)
	assert.Equal(t, len(body.Entries), body.Count)

	byName := map[string]models.RegistryEntry{}
	for _, e := range body.Entries {
		byName[e.Name] = e
	}
	require.Contains(t, byName, "-width")
	assert.Equal(t, "integer", byName["-width"].Kind)
	assert.Equal(t, "1920", byName["-width"].Default)
	assert.Contains(t, byName, params.IncludeFlag)
}

func TestLogs(t *testing.T) {
	var out bytes.Buffer
	logging.Initialize(logging.Config{Level: "info", Output: &out})
	logger := logging.GetLogger("apitest")
	for _, msg := range []string{"first", "second", "third"} {
		logger.Info(msg)
	}

	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/logs?module=apitest&limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[models.LogsData](t, resp.Body)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "second", body.Entries[0].Message)
	assert.Equal(t, "third", body.Entries[1].Message)
	assert.Equal(t, "apitest", body.Entries[1].Module)
}

func TestMetricsHandlerMounted(t *testing.T) {
	ts := newTestServer(t, &Options{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "thor_params_sessions_total 0\n")
		}),
	})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "thor_params_sessions_total")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/params/resolve", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestEventStream(t *testing.T) {
	bus := events.New()
	ts := newTestServer(t, &Options{Bus: bus})

	resp, err := http.Get(ts.URL + "/api/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "data:") {
				lines <- line
			}
		}
	}()

	waitFor := func(substr string) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case line := <-lines:
				if strings.Contains(line, substr) {
					return
				}
			case <-timeout:
				t.Fatalf("timeout waiting for %q", substr)
			}
		}
	}

	waitFor("SSE connection established")

	resolve := postResolve(t, ts, models.ResolveRequestData{Args: []string{"-width", "100"}}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, resolve.StatusCode)

	waitFor("session-completed")
	waitFor(`"code":"` + params.ErrCodeInvalidParameters + `"`)
}
