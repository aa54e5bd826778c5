package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiconfig "github.com/weisyn/vuescan/internal/config/api"
	scanconfig "github.com/weisyn/vuescan/internal/config/scan"
	"github.com/weisyn/vuescan/internal/core/infrastructure/clock"
	"github.com/weisyn/vuescan/internal/core/infrastructure/log"
	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/internal/core/scan/markers"
	"github.com/weisyn/vuescan/pkg/types"
)

type testEnv struct {
	server *Server
	engine *scan.Engine
	clock  *clock.MockClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mc := clock.NewMockClock(time.UnixMilli(1_700_000_000_000))
	engine := scan.NewEngine(scanconfig.New(&types.UserScanConfig{Ignore: []string{"RouterLink"}}).GetOptions(), mc, nil, nil)
	t.Cleanup(engine.Close)

	store, err := markers.New(time.Minute, mc, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(scan.NewCollector(engine)))

	srv := NewServer(Dependencies{
		Options:  apiconfig.New(nil).GetOptions(),
		Logger:   log.NewNop(),
		Engine:   engine,
		Markers:  store,
		Registry: reg,
		AppName:  "test",
	})
	return &testEnv{server: srv, engine: engine, clock: mc}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestLifecycleFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/lifecycle/mounted", gin.H{"component": "Widget"})
	require.Equal(t, http.StatusOK, w.Code)
	var handle types.InstanceHandle
	decode(t, w, &handle)
	assert.Equal(t, "Widget", handle.Component)
	assert.NotEmpty(t, handle.ID)

	w = env.do(t, http.MethodPost, "/api/lifecycle/render-start", gin.H{"component": "Widget"})
	var token types.RenderToken
	decode(t, w, &token)
	require.NotEmpty(t, token.ID)

	env.clock.Advance(12 * time.Millisecond)
	w = env.do(t, http.MethodPost, "/api/lifecycle/render-settled", gin.H{"token": token.ID})
	var settled struct {
		Settled  bool    `json:"settled"`
		Duration float64 `json:"duration"`
	}
	decode(t, w, &settled)
	assert.True(t, settled.Settled)
	assert.Equal(t, 12.0, settled.Duration)

	w = env.do(t, http.MethodPost, "/api/lifecycle/render-settled", gin.H{"token": token.ID})
	decode(t, w, &settled)
	assert.False(t, settled.Settled, "重复结算被忽略")

	w = env.do(t, http.MethodPost, "/api/heap", gin.H{"usedJSHeapSize": 1_000_000})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/memory-sample", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/memory-stats/Widget", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st types.ComponentStats
	decode(t, w, &st)
	assert.Equal(t, 1, st.InstanceCount)
	assert.Equal(t, 1, st.RenderCount)
	assert.Equal(t, uint64(1_000_000), st.LastHeapUsed)

	w = env.do(t, http.MethodPost, "/api/lifecycle/unmounted", gin.H{"component": "Widget"})
	var removed struct {
		Removed bool `json:"removed"`
	}
	decode(t, w, &removed)
	assert.True(t, removed.Removed)
}

func TestLifecycleValidation(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/lifecycle/mounted", bytes.NewBufferString("{bad"))
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/heap", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/lifecycle/mounted", gin.H{"component": "RouterLink"})
	var handle types.InstanceHandle
	decode(t, w, &handle)
	assert.Empty(t, handle.ID, "被忽略的组件返回空句柄")
}

func TestMemoryControl(t *testing.T) {
	env := newTestEnv(t)

	var status struct {
		IsTracking bool  `json:"isTracking"`
		IntervalMs int64 `json:"intervalMs"`
	}

	w := env.do(t, http.MethodPost, "/api/memory-start?interval_ms=60000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	decode(t, env.do(t, http.MethodGet, "/api/memory-status", nil), &status)
	assert.True(t, status.IsTracking)
	assert.Equal(t, int64(60000), status.IntervalMs)

	w = env.do(t, http.MethodPost, "/api/memory-stop", nil)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	decode(t, env.do(t, http.MethodGet, "/api/memory-status", nil), &status)
	assert.False(t, status.IsTracking)

	for _, raw := range []string{"abc", "0", "-5", "86400001", "9223372036854775807"} {
		w = env.do(t, http.MethodPost, "/api/memory-start?interval_ms="+raw, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
	assert.False(t, env.engine.IsMemoryTracking(), "无效间隔不启动采样")

	w = env.do(t, http.MethodPost, "/api/memory-start?interval_ms=86400000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24*time.Hour, env.engine.MemoryTrackingInterval())
	env.engine.StopMemoryTracking()

	env.engine.NotifyMounted("Widget")
	env.engine.SampleMemoryNow()
	w = env.do(t, http.MethodPost, "/api/memory-clear", nil)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.JSONEq(t, `{}`, env.do(t, http.MethodGet, "/api/memory-stats", nil).Body.String())

	w = env.do(t, http.MethodGet, "/api/memory-stats/Missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComponentSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.engine.NotifyMounted("Widget")
	env.engine.NotifyMounted("Widget")
	env.engine.ReportHeap(4096)

	w := env.do(t, http.MethodPost, "/api/memory-sample/Widget", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap types.MemorySnapshot
	decode(t, w, &snap)
	assert.Equal(t, "Widget", snap.Component)
	assert.Equal(t, uint64(4096), snap.HeapUsed)
	assert.Equal(t, 2, snap.InstanceCount)
	assert.Equal(t, env.clock.UnixMilli(), snap.Timestamp)

	st, ok := env.engine.GetComponentStats("Widget")
	require.True(t, ok)
	assert.Len(t, st.Snapshots, 1)

	w = env.do(t, http.MethodPost, "/api/memory-sample/Missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPost, "/api/memory-sample/RouterLink", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComponentEvents(t *testing.T) {
	env := newTestEnv(t)

	var recorded struct {
		Recorded bool `json:"recorded"`
	}
	w := env.do(t, http.MethodPost, "/api/lifecycle/event", gin.H{"component": "Widget", "name": "click"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &recorded)
	assert.False(t, recorded.Recorded, "未挂载的组件")

	env.engine.NotifyMounted("Widget")
	w = env.do(t, http.MethodPost, "/api/lifecycle/event", gin.H{
		"component": "Widget",
		"name":      "click",
		"data":      gin.H{"button": "save"},
	})
	decode(t, w, &recorded)
	assert.True(t, recorded.Recorded)

	w = env.do(t, http.MethodGet, "/api/events/Widget", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []types.ComponentEvent
	decode(t, w, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "click", events[0].Name)
	assert.Equal(t, env.clock.UnixMilli(), events[0].Timestamp)
	assert.JSONEq(t, `{"button":"save"}`, string(events[0].Data))

	w = env.do(t, http.MethodGet, "/api/events/Missing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/lifecycle/event", gin.H{"component": "Widget"})
	decode(t, w, &recorded)
	assert.False(t, recorded.Recorded, "缺少事件名")
}

func TestPerformance(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/performance", gin.H{"name": "route-change", "duration": 8.5})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Marker types.PerformanceMarker `json:"marker"`
	}
	decode(t, w, &created)

	var list struct {
		Markers []types.PerformanceMarker `json:"markers"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/performance", nil), &list)
	require.Len(t, list.Markers, 1)
	assert.Equal(t, "route-change", list.Markers[0].Name)

	w = env.do(t, http.MethodPost, "/api/performance", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/performance/"+created.Marker.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/performance/"+created.Marker.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/performance", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDevTools(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		action  string
		success bool
	}{
		{"组件数据", "getComponentData", true},
		{"性能数据", "getPerfData", true},
		{"配置", "getConfig", true},
		{"未知动作", "nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/devtools?action="+tt.action, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var resp map[string]interface{}
			decode(t, w, &resp)
			assert.Equal(t, tt.success, resp["success"])
			if !tt.success {
				assert.Equal(t, "Unknown action", resp["message"])
			}
		})
	}

	t.Run("清空数据", func(t *testing.T) {
		env.engine.NotifyMounted("Widget")
		env.engine.SampleMemoryNow()
		w := env.do(t, http.MethodPost, "/api/devtools", gin.H{"action": "clearData"})
		assert.JSONEq(t, `{"success":true,"message":"Data cleared"}`, w.Body.String())
		assert.Empty(t, env.engine.GetStats())
	})
}

func TestMetricsAndHealth(t *testing.T) {
	env := newTestEnv(t)
	env.engine.NotifyMounted("Widget")
	env.engine.SampleMemoryNow()

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `vuescan_component_instances{component="Widget"} 1`)

	w = env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = env.do(t, http.MethodOptions, "/api/memory-stats", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
