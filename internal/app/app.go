package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	configimpl "github.com/weisyn/vuescan/internal/config"
	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/pkg/interfaces/config"
)

// 应用停止超时
const stopTimeout = 15 * time.Second

// resolveAppOptions 决定最终交给配置模块的用户配置
//
// 优先级：WithAppConfig > WithEmbeddedConfig > WithConfigFile > VUESCAN_CONFIG 环境变量 > 默认值
func resolveAppOptions(opts *options) (config.AppOptions, error) {
	if opts.appConfig != nil {
		return opts, nil
	}

	if len(opts.embeddedConfig) > 0 {
		appConfig, err := configimpl.ParseAppConfig(opts.embeddedConfig, opts.embeddedExt)
		if err != nil {
			return nil, fmt.Errorf("解析嵌入配置失败: %w", err)
		}
		opts.appConfig = appConfig
		return opts, nil
	}

	appConfig, err := configimpl.LoadAppConfig(configimpl.ResolveConfigPath(opts.configFilePath))
	if err != nil {
		return nil, err
	}
	opts.appConfig = appConfig
	return opts, nil
}

// App 是 vuescan 应用的对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 等待应用收到退出信号，然后停止
	Wait()

	// Engine 返回扫描引擎
	Engine() *scan.Engine

	// Done 应用停止后关闭
	Done() <-chan struct{}
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
	engine    *scan.Engine
	logger    *zap.Logger
	done      chan struct{}
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	select {
	case <-a.done:
		return nil
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err := a.bootstrap.StopApp(ctx)
	close(a.done)
	return err
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() {
	a.logger.Info("应用正在运行，按 Ctrl+C 停止")

	sig := WaitForSignal()
	a.logger.Info("收到退出信号，正在停止", zap.String("signal", sig.String()))

	if err := a.Stop(); err != nil {
		a.logger.Warn("停止应用时出错", zap.Error(err))
	}
}

// Engine 返回扫描引擎
func (a *internalApp) Engine() *scan.Engine {
	return a.engine
}

// Done 应用停止后关闭
func (a *internalApp) Done() <-chan struct{} {
	return a.done
}

// Start 启动 vuescan 应用
func Start(appOptions ...Option) (App, error) {
	return BootstrapApp(appOptions...)
}

// populate 从容器中取出对外暴露的组件
func populate(engine **scan.Engine, logger **zap.Logger) fx.Option {
	return fx.Populate(engine, logger)
}
