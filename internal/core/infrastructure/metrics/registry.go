// Package metrics 提供 Prometheus 指标注册表
//
// 📋 **指标基础设施模块 (Metrics Infrastructure Module)**
//
// 本模块提供：
// - 独立的 *prometheus.Registry（不使用全局默认注册表，测试可以多次构建）
// - Go runtime 与进程指标
// - 通过 fx value group 收集其它模块提供的 Collector
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// NewRegistry 创建带 Go runtime 与进程指标的注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RegisterCollectors 注册一组采集器；重复注册返回错误
func RegisterCollectors(reg prometheus.Registerer, logger *zap.Logger, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if c == nil {
			continue
		}
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("注册指标采集器失败: %w", err)
		}
	}
	if logger != nil {
		logger.Debug("指标采集器注册完成", zap.Int("count", len(cs)))
	}
	return nil
}
