package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/stagehand/internal/config"
	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scenarioScript = "../../pkg/script/testdata/scenario.yaml"
	androidQScript = "../../pkg/script/testdata/android_q.yaml"
)

func TestCreateLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := CreateLogger(&buf, config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger, err = CreateLogger(&buf, config.LogConfig{Level: "info", JSON: true})
	require.NoError(t, err)
	logger.Info("structured", "container_id", "a")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "a", line["container_id"])

	buf.Reset()
	logger, err = CreateLogger(&buf, config.LogConfig{Level: "off"})
	require.NoError(t, err)
	logger.Error("silent")
	assert.Empty(t, buf.String())

	_, err = CreateLogger(&buf, config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Validate(&out, []string{scenarioScript, androidQScript}))
	assert.Contains(t, out.String(), "✔ "+scenarioScript)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("steps:\n  - {signal: resume, container: ghost}\n"), 0644))

	out.Reset()
	err := Validate(&out, []string{scenarioScript, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, script.ErrInvalidScript)
	assert.Contains(t, out.String(), "✘ "+bad)

	assert.ErrorIs(t, Validate(&out, nil), script.ErrInvalidScript)
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("Text", func(t *testing.T) {
		var out bytes.Buffer
		report, err := Replay(ctx, &out, scenarioScript, ReplayOptions{Metrics: true}, logger)
		require.NoError(t, err)
		assert.True(t, report.Passed())
		assert.Contains(t, out.String(), "PASS")
		assert.Contains(t, out.String(), `stagehand_signals_total{signal="resume"} 3`)
		assert.Contains(t, out.String(), `stagehand_attach_total{engine_id="stagehand_default_engine"}`)
	})

	t.Run("JSON", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Replay(ctx, &out, scenarioScript, ReplayOptions{Format: "json"}, logger)
		require.NoError(t, err)

		var decoded script.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.NotEmpty(t, decoded.Steps)
		last := decoded.Steps[len(decoded.Steps)-1]
		assert.Equal(t, domain.SignalDestroy, last.Signal)
		assert.Empty(t, last.Snapshot.Containers)
	})

	t.Run("Markdown", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Replay(ctx, &out, scenarioScript, ReplayOptions{Format: "markdown"}, logger)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "# two opaque screens")
		assert.Contains(t, out.String(), "| 3 | resume | a | a |")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := Replay(ctx, io.Discard, scenarioScript, ReplayOptions{Format: "xml"}, logger)
		assert.ErrorContains(t, err, "unknown format")
	})

	t.Run("FailedExpectation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wrong.yaml")
		body := "containers:\n  - {id: a, url: /a}\nsteps:\n  - {signal: create, container: a}\n  - signal: resume\n    container: a\n    expect: {top: nobody}\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		var out bytes.Buffer
		report, err := Replay(ctx, &out, path, ReplayOptions{}, logger)
		assert.ErrorIs(t, err, ErrReplayFailed)
		require.NotNil(t, report)
		assert.False(t, report.Passed())
		assert.Contains(t, out.String(), "FAIL")
	})
}

func TestGraph(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, Graph(ctx, &out, GraphOptions{}))
	assert.True(t, strings.HasPrefix(out.String(), "stateDiagram-v2"))
	assert.NotContains(t, out.String(), "classDef")

	out.Reset()
	require.NoError(t, Graph(ctx, &out, GraphOptions{Script: scenarioScript, Sequence: true}))
	assert.Contains(t, out.String(), "sequenceDiagram")
	assert.Contains(t, out.String(), "a->>stagehand_default_engine: attach")

	assert.Error(t, Graph(ctx, &out, GraphOptions{Sequence: true}))
}

func TestNewStack(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		st, err := NewStack(config.Default(), logging.NewNop())
		require.NoError(t, err)
		defer st.Close()
		assert.Equal(t, []string{domain.DefaultEngineID}, st.Coordinator.Engines())
		assert.Contains(t, st.Engines, domain.DefaultEngineID)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := config.Default()
		cfg.Engines = nil
		_, err := NewStack(cfg, logging.NewNop())
		assert.Error(t, err)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Redis.Addr = mr.Addr()
		cfg.Redis.Prefix = "test:"

		st, err := NewStack(cfg, logging.NewNop())
		require.NoError(t, err)
		defer st.Close()

		handler := NewServeHandler(st, logging.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/containers", strings.NewReader(`{"url":"/home"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created domain.ContainerInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.True(t, mr.Exists("test:descriptor:"+created.UniqueID))
	})
}

func TestNewStack_EncryptedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	cfg.Store.RedactParams = []string{"token"}

	st, err := NewStack(cfg, logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	handler := NewServeHandler(st, logging.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/containers",
		strings.NewReader(`{"unique_id":"pay","url":"/secret-url","url_params":{"token":"tok-value-123"}}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	raw, err := mr.Get("stagehand:descriptor:pay")
	require.NoError(t, err)
	assert.NotContains(t, raw, "/secret-url")
	assert.NotContains(t, raw, "tok-value-123")

	c, ok := st.Coordinator.Container("pay")
	require.True(t, ok)
	url, err := c.URL()
	require.NoError(t, err)
	assert.Equal(t, "/secret-url", url)
	assert.Equal(t, "***", c.URLParams()["token"])

	cfg.Store.RedactParams = []string{"("}
	_, err = NewStack(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestServeHandler_Metrics(t *testing.T) {
	st, err := NewStack(config.Default(), logging.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(NewServeHandler(st, logging.NewNop()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/containers", "application/json", strings.NewReader(`{"url":"/home"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stagehand_signals_total{signal="create"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
