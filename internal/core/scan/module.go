package scan

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	apiconfig "github.com/weisyn/vuescan/internal/config/api"
	scanconfig "github.com/weisyn/vuescan/internal/config/scan"
	"github.com/weisyn/vuescan/internal/core/scan/markers"
	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/interfaces/infrastructure/event"
)

// Module 返回扫描引擎模块
//
// 提供：
// - *Engine: 扫描引擎
// - *markers.Store: 性能标记存储
// - prometheus.Collector（metrics_collectors 组）
//
// 生命周期：启动时按配置自动开始内存采样，停止时停止采样并排空结算队列。
func Module() fx.Option {
	return fx.Module("scan",
		fx.Provide(
			ProvideEngine,
			ProvideMarkers,
			fx.Annotate(NewCollector, fx.ResultTags(`group:"metrics_collectors"`)),
		),
		fx.Invoke(StartEngine),
	)
}

// EngineInput 引擎的输入依赖
type EngineInput struct {
	fx.In

	Options  *scanconfig.ScanOptions
	Clock    infraClock.Clock
	EventBus event.EventBus `optional:"true"`
	Logger   *zap.Logger    `optional:"true"`
}

// ProvideEngine 创建扫描引擎
func ProvideEngine(in EngineInput) *Engine {
	var logger *zap.Logger
	if in.Logger != nil {
		logger = in.Logger.With(zap.String("module", "scan"))
	}
	return NewEngine(in.Options, in.Clock, in.EventBus, logger)
}

// MarkersInput 性能标记存储的输入依赖
type MarkersInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	API       *apiconfig.APIOptions
	Clock     infraClock.Clock
	Logger    *zap.Logger `optional:"true"`
}

// ProvideMarkers 创建性能标记存储
func ProvideMarkers(in MarkersInput) (*markers.Store, error) {
	var logger *zap.Logger
	if in.Logger != nil {
		logger = in.Logger.With(zap.String("module", "markers"))
	}
	store, err := markers.New(in.API.MarkerRetention, in.Clock, logger)
	if err != nil {
		return nil, fmt.Errorf("创建性能标记存储失败: %w", err)
	}
	in.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}

// StartEngine 挂接引擎生命周期
func StartEngine(lifecycle fx.Lifecycle, engine *Engine, options *scanconfig.ScanOptions, logger *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if options.Enabled && options.TrackMemory && options.AutoStartMemoryTracking {
				engine.StartMemoryTracking(options.MemoryTrackingInterval)
			}
			if logger != nil {
				logger.Info("扫描引擎已启动",
					zap.Bool("enabled", options.Enabled),
					zap.Bool("memory_tracking", engine.IsMemoryTracking()),
					zap.String("heap_source", options.HeapSource))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			engine.Close()
			return nil
		},
	})
}

var _ prometheus.Collector = (*engineCollector)(nil)
