package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stagehand"
	httpadapter "github.com/aretw0/stagehand/pkg/adapters/http"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bridge struct {
	handler http.Handler
	co      *stagehand.Coordinator
	stream  *observability.Stream
}

func newBridge(t *testing.T) *bridge {
	t.Helper()
	engine := virtual.NewEngine(domain.DefaultEngineID, nil)
	stream := observability.NewStream(nil)
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	co, err := stagehand.New(
		stagehand.WithEngine(engine),
		stagehand.WithLifecycleHooks(metrics.Hooks().Merge(stream.Hooks())),
	)
	require.NoError(t, err)

	h := httpadapter.NewHandler(co,
		httpadapter.WithStream(stream),
		httpadapter.WithGatherer(reg),
		httpadapter.WithEngineInspector(domain.DefaultEngineID, engine),
	)
	return &bridge{handler: h, co: co, stream: stream}
}

func (b *bridge) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	return w
}

func (b *bridge) create(t *testing.T, id string) {
	t.Helper()
	w := b.do(t, http.MethodPost, "/containers", httpadapter.CreateRequest{URL: "/" + id, UniqueID: id})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateAndSignal(t *testing.T) {
	b := newBridge(t)

	w := b.do(t, http.MethodPost, "/containers", httpadapter.CreateRequest{
		URL:            "/home",
		UniqueID:       "home",
		URLParams:      map[string]any{"tab": "feed"},
		BackgroundMode: "transparent",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info domain.ContainerInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "home", info.UniqueID)
	assert.Equal(t, domain.StageCreated, info.Stage)
	assert.Equal(t, domain.BackgroundTransparent, info.BackgroundMode)

	w = b.do(t, http.MethodPost, "/containers/home/signals/resume", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "home", snap.Top)
	assert.Equal(t, "home", snap.Owners[domain.DefaultEngineID])

	w = b.do(t, http.MethodGet, "/containers/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.Attached)
	assert.Equal(t, domain.StageResumed, info.Stage)

	w = b.do(t, http.MethodGet, "/engines/"+domain.DefaultEngineID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var engine httpadapter.EngineInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &engine))
	assert.Equal(t, "home", engine.Attached)
	assert.Equal(t, []string{"home"}, engine.Surfaces)
}

func TestErrors(t *testing.T) {
	b := newBridge(t)
	b.create(t, "a")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing url", http.MethodPost, "/containers", httpadapter.CreateRequest{UniqueID: "x"}, http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/containers", httpadapter.CreateRequest{URL: "/x", BackgroundMode: "frosted"}, http.StatusBadRequest},
		{"duplicate", http.MethodPost, "/containers", httpadapter.CreateRequest{URL: "/a", UniqueID: "a"}, http.StatusConflict},
		{"unknown engine", http.MethodPost, "/containers", httpadapter.CreateRequest{URL: "/y", UniqueID: "y", EngineID: "nope"}, http.StatusBadRequest},
		{"unknown container", http.MethodGet, "/containers/ghost", nil, http.StatusNotFound},
		{"unknown signal", http.MethodPost, "/containers/a/signals/jump", nil, http.StatusBadRequest},
		{"create signal", http.MethodPost, "/containers/a/signals/create", nil, http.StatusBadRequest},
		{"signal for ghost", http.MethodPost, "/containers/ghost/signals/resume", nil, http.StatusNotFound},
		{"unknown engine info", http.MethodGet, "/engines/nope", nil, http.StatusNotFound},
		{"finish ghost", http.MethodPost, "/containers/ghost/finish", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := b.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestCreateFailureReleasesDescriptor(t *testing.T) {
	b := newBridge(t)
	ctx := context.Background()

	w := b.do(t, http.MethodPost, "/containers", httpadapter.CreateRequest{URL: "/x", UniqueID: "x", EngineID: "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	pending, err := b.co.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	w = b.do(t, http.MethodPost, "/containers", httpadapter.CreateRequest{URL: "/x", UniqueID: "x"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pending, err = b.co.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, pending)
}

func TestFinish(t *testing.T) {
	b := newBridge(t)
	b.create(t, "a")

	w := b.do(t, http.MethodPost, "/containers/a/finish", httpadapter.FinishRequest{Result: map[string]any{"ok": true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Finishing bool           `json:"finishing"`
		Result    map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Finishing)
	assert.Equal(t, true, body.Result["ok"])
}

func TestHealthInfoMetrics(t *testing.T) {
	b := newBridge(t)
	b.create(t, "a")
	require.Equal(t, http.StatusOK, b.do(t, http.MethodPost, "/containers/a/signals/resume", nil).Code)

	w := b.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	w = b.do(t, http.MethodGet, "/info", nil)
	assert.Contains(t, w.Body.String(), stagehand.Version)

	w = b.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `stagehand_signals_total{signal="resume"} 1`)
	assert.Contains(t, w.Body.String(), "stagehand_attached_containers")

	w = b.do(t, http.MethodGet, "/containers", nil)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Containers, 1)
}

func TestSubscribeEvents(t *testing.T) {
	b := newBridge(t)
	srv := httptest.NewServer(b.handler)
	defer srv.Close()
	b.create(t, "a")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?container=a", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return b.stream.Len() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, b.co.Resume(context.Background(), "a"))

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") && !strings.Contains(line, "ping") {
			got = append(got, strings.TrimSpace(strings.TrimPrefix(line, "event: ")))
		}
	}
	assert.Equal(t, []string{"signal", "attach"}, got)
}
