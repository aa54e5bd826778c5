// Package http 提供 vuescan 的 HTTP API 服务
//
// 路由：
//   - /api/memory-*            统计查询与采样控制
//   - /api/lifecycle/*, /api/heap 生命周期上报
//   - /api/performance         性能标记
//   - /api/devtools            devtools 面板
//   - /ws/stats                统计推送（可选）
//   - /metrics                 Prometheus 指标（可选）
//   - /health                  健康检查
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/api/http/handlers"
	"github.com/weisyn/vuescan/internal/api/http/middleware"
	"github.com/weisyn/vuescan/internal/api/websocket"
	apiconfig "github.com/weisyn/vuescan/internal/config/api"
	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/internal/core/scan/markers"
	"github.com/weisyn/vuescan/pkg/interfaces/infrastructure/log"
)

// Dependencies HTTP服务器依赖
type Dependencies struct {
	Options  *apiconfig.APIOptions
	Logger   log.Logger
	Engine   *scan.Engine
	Markers  *markers.Store
	Stream   *websocket.Server    // 可选
	Registry *prometheus.Registry // 可选
	AppName  string
}

// Server HTTP服务器结构
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *apiconfig.APIOptions
	logger     log.Logger
	stream     *websocket.Server
	startedAt  time.Time
	appName    string

	listener net.Listener
	serveErr chan error
}

// NewServer 创建HTTP服务器并注册路由
func NewServer(deps Dependencies) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(deps.Options.CORSAllowOrigin))
	if deps.Logger != nil {
		router.Use(middleware.Logger(deps.Logger))
	}
	if deps.Registry != nil && deps.Options.EnableMetrics {
		router.Use(middleware.NewMetrics(deps.Registry).Middleware())
	}

	s := &Server{
		router:    router,
		options:   deps.Options,
		logger:    deps.Logger,
		stream:    deps.Stream,
		startedAt: time.Now(),
		appName:   deps.AppName,
	}
	s.setupRoutes(deps)
	return s
}

// setupRoutes 设置API路由
func (s *Server) setupRoutes(deps Dependencies) {
	var zl *zap.Logger
	if deps.Logger != nil {
		zl = deps.Logger.GetZapLogger()
	}

	api := s.router.Group("/api")
	handlers.NewMemoryHandler(zl, deps.Engine).RegisterRoutes(api)
	handlers.NewLifecycleHandler(zl, deps.Engine).RegisterRoutes(api)
	handlers.NewPerformanceHandler(zl, deps.Markers).RegisterRoutes(api)
	handlers.NewDevToolsHandler(zl, deps.Engine, deps.Markers).RegisterRoutes(api)

	if s.stream != nil && s.options.EnableWebSocket {
		s.router.GET("/ws/stats", s.stream.HandleWebSocket)
	}

	if deps.Registry != nil && s.options.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"app":       s.appName,
			"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
}

// Handler 返回路由处理器（测试使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 返回实际监听地址；未启动时返回配置地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.options.Addr()
}

// Start 绑定端口并在后台开始服务
func (s *Server) Start() error {
	addr := s.options.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	// websocket 长连接不受写超时限制
	if s.stream != nil && s.options.EnableWebSocket {
		s.httpServer.WriteTimeout = 0
	}

	if s.stream != nil && s.options.EnableWebSocket {
		if err := s.stream.Start(); err != nil {
			_ = listener.Close()
			return fmt.Errorf("启动统计推送失败: %w", err)
		}
	}

	s.serveErr = make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.Errorf("HTTP服务器异常退出: %v", err)
			}
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	if s.logger != nil {
		s.logger.Infof("HTTP服务器启动成功，监听地址: %s", s.Addr())
	}
	return nil
}

// Stop 优雅关闭服务器
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if s.stream != nil && s.options.EnableWebSocket {
		s.stream.Stop()
	}

	if _, ok := ctx.Deadline(); !ok && s.options.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.ShutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭HTTP服务器失败: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("HTTP服务器已关闭")
	}
	return nil
}

// Done 服务结束时关闭；异常退出时先发送错误
func (s *Server) Done() <-chan error {
	return s.serveErr
}
