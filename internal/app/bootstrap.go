package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/api"
	configimpl "github.com/weisyn/vuescan/internal/config"
	"github.com/weisyn/vuescan/internal/core/infrastructure/clock"
	"github.com/weisyn/vuescan/internal/core/infrastructure/event"
	log "github.com/weisyn/vuescan/internal/core/infrastructure/log"
	"github.com/weisyn/vuescan/internal/core/infrastructure/metrics"
	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/pkg/interfaces/config"
)

// Framework layers
const (
	// 基础设施层
	LayerInfrastructure = "infrastructure"
	// 通信层
	LayerCommunication = "communication"
	// 业务逻辑层
	LayerBusiness = "business"
	// 应用层
	LayerApplication = "application"
)

// 启动超时
const startTimeout = 30 * time.Second

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts       *options
	appOptions config.AppOptions
	fxApp      *fx.App

	engine *scan.Engine
	logger *zap.Logger
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) (*Bootstrap, error) {
	appOptions, err := resolveAppOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Bootstrap{opts: opts, appOptions: appOptions}, nil
}

// provideAppOptions 为配置模块提供 config.AppOptions
func (b *Bootstrap) provideAppOptions() config.AppOptions {
	return b.appOptions
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(b.provideAppOptions),
		configimpl.Module(),
		log.Module(),
		clock.Module(),
		metrics.Module(),
	}
}

// SetupCommunicationLayer 设置通信层模块
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		scan.Module(),
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{
		api.Module(),
	}
}

// SetupModules 按层次组装所有模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var allModules []fx.Option
	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupCommunicationLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)
	return allModules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		// 禁用fx内部日志
		fx.NopLogger,
		populate(&b.engine, &b.logger),
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("依赖注入失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	b.logger.Info("应用已启动", zap.Bool("api", b.opts.enableAPI))
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(options ...Option) (App, error) {
	opts := newOptions(options...)

	bootstrap, err := NewBootstrap(opts)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), startTimeout)
	defer startupCancel()

	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	return &internalApp{
		bootstrap: bootstrap,
		engine:    bootstrap.engine,
		logger:    bootstrap.logger,
		done:      make(chan struct{}),
	}, nil
}

// WaitForSignal 等待退出信号
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	return <-signals
}
