// Package event 提供事件管理功能
package event

import (
	"context"

	eventInterface "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/event"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Logger    *zap.Logger  `optional:"true"` // 日志记录器（可选）
	Lifecycle fx.Lifecycle // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus // 基础事件总线
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(
			func(input ModuleInput) ModuleOutput {
				var logger *zap.Logger
				if input.Logger != nil {
					logger = input.Logger.With(zap.String("module", "event"))
				}
				bus := New(logger)

				// 关闭时等待异步订阅者处理完成
				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						bus.WaitAsync()
						return nil
					},
				})

				return ModuleOutput{EventBus: bus}
			},
		),
	)
}
