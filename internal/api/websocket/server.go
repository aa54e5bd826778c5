// Package websocket 向 devtools 面板推送组件统计
//
// /ws/stats 连接建立后立即收到一次完整统计，之后按推送间隔
// 以及每次采样、清空、启停事件后各收到一次。
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	eventbus "github.com/weisyn/vuescan/internal/core/infrastructure/event"
	"github.com/weisyn/vuescan/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/vuescan/pkg/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 8
)

// StatsSource 统计数据来源
type StatsSource interface {
	GetStats() map[string]types.ComponentStats
	IsMemoryTracking() bool
}

// StatsMessage 推送消息
type StatsMessage struct {
	Type       string                          `json:"type"`
	IsTracking bool                            `json:"isTracking"`
	Timestamp  int64                           `json:"timestamp"`
	Stats      map[string]types.ComponentStats `json:"stats"`
}

// client 单个 websocket 连接
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server WebSocket服务器
type Server struct {
	logger   *zap.Logger
	source   StatsSource
	bus      event.EventBus
	interval time.Duration
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	notify chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewServer 创建WebSocket服务器；bus 可以为 nil
func NewServer(source StatsSource, bus event.EventBus, interval time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Server{
		logger:   logger,
		source:   source,
		bus:      bus,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 面板与被观测页面通常不同源
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*client]struct{}),
		notify:  make(chan struct{}, 1),
	}
}

// Start 启动推送循环并订阅引擎事件
func (s *Server) Start() error {
	if s.bus != nil {
		for _, t := range []event.EventType{
			eventbus.EventTypeMemorySampled,
			eventbus.EventTypeStatsCleared,
			eventbus.EventTypeTrackingChanged,
			eventbus.EventTypeComponentEvent,
		} {
			if err := s.bus.Subscribe(t, s.trigger); err != nil {
				return err
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

// Stop 停止推送并关闭所有连接
func (s *Server) Stop() {
	if s.bus != nil {
		_ = s.bus.Unsubscribe(eventbus.EventTypeMemorySampled, s.trigger)
		_ = s.bus.Unsubscribe(eventbus.EventTypeStatsCleared, s.trigger)
		_ = s.bus.Unsubscribe(eventbus.EventTypeTrackingChanged, s.trigger)
		_ = s.bus.Unsubscribe(eventbus.EventTypeComponentEvent, s.trigger)
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
	}

	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()
}

// ClientCount 当前连接数
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// trigger 请求一次推送；多个请求合并为一次。参数由事件总线传入，忽略。
func (s *Server) trigger(_ ...interface{}) {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Server) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcast()
		case <-s.notify:
			s.broadcast()
		}
	}
}

func (s *Server) snapshot() ([]byte, error) {
	return json.Marshal(StatsMessage{
		Type:       "stats",
		IsTracking: s.source.IsMemoryTracking(),
		Timestamp:  time.Now().UnixMilli(),
		Stats:      s.source.GetStats(),
	})
}

func (s *Server) broadcast() {
	if s.ClientCount() == 0 {
		return
	}
	data, err := s.snapshot()
	if err != nil {
		s.logger.Error("序列化统计失败", zap.Error(err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// 慢消费者丢弃本次推送，下一次推送携带完整状态
			s.logger.Debug("客户端发送缓冲已满，跳过本次推送")
		}
	}
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
func (s *Server) HandleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	if data, err := s.snapshot(); err == nil {
		cl.send <- data
	}

	s.mu.Lock()
	s.clients[cl] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("WebSocket connection established",
		zap.String("remote_addr", conn.RemoteAddr().String()))

	go s.writePump(cl)
	s.readPump(cl)
}

// readPump 读取并丢弃客户端消息，维持心跳；连接断开时注销
func (s *Server) readPump(cl *client) {
	defer func() {
		s.mu.Lock()
		if _, ok := s.clients[cl]; ok {
			delete(s.clients, cl)
			close(cl.send)
		}
		s.mu.Unlock()
		s.logger.Info("WebSocket connection closed",
			zap.String("remote_addr", cl.conn.RemoteAddr().String()))
	}()

	cl.conn.SetReadLimit(4096)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("WebSocket connection closed unexpectedly", zap.Error(err))
			}
			return
		}
		// 任何客户端消息都视为刷新请求
		s.trigger()
	}
}

func (s *Server) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := cl.conn.Close(); err != nil {
			s.logger.Debug("关闭WebSocket连接失败", zap.Error(err))
		}
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
