package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventbus "github.com/weisyn/vuescan/internal/core/infrastructure/event"
	"github.com/weisyn/vuescan/pkg/types"
)

type fakeSource struct {
	calls atomic.Int64
}

func (f *fakeSource) GetStats() map[string]types.ComponentStats {
	f.calls.Add(1)
	return map[string]types.ComponentStats{"Widget": {Component: "Widget", RenderCount: 3}}
}

func (f *fakeSource) IsMemoryTracking() bool { return true }

func TestStatsStream(t *testing.T) {
	gin.SetMode(gin.TestMode)

	bus := eventbus.New(nil)
	srv := NewServer(&fakeSource{}, bus, time.Hour, nil)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	r := gin.New()
	r.GET("/ws/stats", srv.HandleWebSocket)
	ts := httptest.NewServer(r)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() StatsMessage {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg StatsMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	t.Run("连接后立即推送", func(t *testing.T) {
		msg := read()
		assert.Equal(t, "stats", msg.Type)
		assert.True(t, msg.IsTracking)
		assert.Equal(t, 3, msg.Stats["Widget"].RenderCount)
	})

	t.Run("采样事件触发推送", func(t *testing.T) {
		require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
		bus.Publish(eventbus.EventTypeMemorySampled, 1)
		msg := read()
		assert.Contains(t, msg.Stats, "Widget")
	})
}
