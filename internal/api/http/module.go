package http

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/api/websocket"
	apiconfig "github.com/weisyn/vuescan/internal/config/api"
	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/internal/core/scan/markers"
	"github.com/weisyn/vuescan/pkg/interfaces/config"
	"github.com/weisyn/vuescan/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/vuescan/pkg/interfaces/infrastructure/log"
)

// ServerInput HTTP服务器的输入依赖
type ServerInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider
	Options   *apiconfig.APIOptions
	Logger    log.Logger
	Engine    *scan.Engine
	Markers   *markers.Store
	EventBus  event.EventBus       `optional:"true"`
	Registry  *prometheus.Registry `optional:"true"`
}

// Module 返回HTTP服务模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
		fx.Invoke(func(*Server) {}),
	)
}

// ProvideServer 创建HTTP服务器并挂接生命周期
func ProvideServer(in ServerInput) *Server {
	if in.Provider.GetEnvironment() == "prod" {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
	}

	var stream *websocket.Server
	if in.Options.EnableWebSocket {
		stream = websocket.NewServer(in.Engine, in.EventBus, in.Options.StreamInterval,
			in.Logger.GetZapLogger().With(zap.String("module", "websocket")))
	}

	server := NewServer(Dependencies{
		Options:  in.Options,
		Logger:   in.Logger.With("module", "http"),
		Engine:   in.Engine,
		Markers:  in.Markers,
		Stream:   stream,
		Registry: in.Registry,
		AppName:  in.Provider.GetAppName(),
	})

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return server
}
