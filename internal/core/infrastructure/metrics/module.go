package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CollectorGroup fx value group 名称，其它模块以此提供 prometheus.Collector
const CollectorGroup = `group:"metrics_collectors"`

// Module 返回 metrics 模块的 fx.Option
//
// 提供：
// - *prometheus.Registry
// - prometheus.Registerer / prometheus.Gatherer
//
// 依赖：
// - []prometheus.Collector（value group，可为空）
// - *zap.Logger（可选）
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			NewRegistry,
			func(reg *prometheus.Registry) prometheus.Registerer { return reg },
			func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
		),
		fx.Invoke(registerGroup),
	)
}

// RegisterInput 注册采集器的输入依赖
type RegisterInput struct {
	fx.In

	Registry   *prometheus.Registry
	Collectors []prometheus.Collector `group:"metrics_collectors"`
	Logger     *zap.Logger            `optional:"true"`
}

func registerGroup(in RegisterInput) error {
	var logger *zap.Logger
	if in.Logger != nil {
		logger = in.Logger.With(zap.String("module", "metrics"))
	}
	return RegisterCollectors(in.Registry, logger, in.Collectors...)
}
