package scan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// engineCollector 在每次抓取时从引擎读取组件统计
type engineCollector struct {
	engine *Engine

	instances   *prometheus.Desc
	renders     *prometheus.Desc
	renderAvgMs *prometheus.Desc
	renderMs    *prometheus.Desc
	heapLast    *prometheus.Desc
	heapAvg     *prometheus.Desc
	tracking    *prometheus.Desc
	pending     *prometheus.Desc
}

// NewCollector 创建引擎指标采集器
func NewCollector(engine *Engine) prometheus.Collector {
	labels := []string{"component"}
	return &engineCollector{
		engine: engine,
		instances: prometheus.NewDesc(
			"vuescan_component_instances",
			"Live instances per component",
			labels, nil,
		),
		renders: prometheus.NewDesc(
			"vuescan_component_renders_total",
			"Settled renders per component",
			labels, nil,
		),
		renderAvgMs: prometheus.NewDesc(
			"vuescan_component_render_avg_milliseconds",
			"Average settled render duration per component",
			labels, nil,
		),
		renderMs: prometheus.NewDesc(
			"vuescan_component_render_milliseconds_total",
			"Total settled render duration per component",
			labels, nil,
		),
		heapLast: prometheus.NewDesc(
			"vuescan_component_heap_last_bytes",
			"Most recent heap sample per component",
			labels, nil,
		),
		heapAvg: prometheus.NewDesc(
			"vuescan_component_heap_avg_bytes",
			"Mean of retained heap samples per component",
			labels, nil,
		),
		tracking: prometheus.NewDesc(
			"vuescan_memory_tracking",
			"1 if the memory sampler is running, otherwise 0",
			nil, nil,
		),
		pending: prometheus.NewDesc(
			"vuescan_pending_renders",
			"Renders begun but not yet settled",
			nil, nil,
		),
	}
}

func (c *engineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.instances
	ch <- c.renders
	ch <- c.renderAvgMs
	ch <- c.renderMs
	ch <- c.heapLast
	ch <- c.heapAvg
	ch <- c.tracking
	ch <- c.pending
}

func (c *engineCollector) Collect(ch chan<- prometheus.Metric) {
	for name, st := range c.engine.GetStats() {
		ch <- prometheus.MustNewConstMetric(c.instances, prometheus.GaugeValue, float64(st.InstanceCount), name)
		ch <- prometheus.MustNewConstMetric(c.renders, prometheus.CounterValue, float64(st.RenderCount), name)
		ch <- prometheus.MustNewConstMetric(c.renderAvgMs, prometheus.GaugeValue, st.AverageRenderTime, name)
		ch <- prometheus.MustNewConstMetric(c.renderMs, prometheus.CounterValue, st.TotalRenderTime, name)
		ch <- prometheus.MustNewConstMetric(c.heapLast, prometheus.GaugeValue, float64(st.LastHeapUsed), name)
		ch <- prometheus.MustNewConstMetric(c.heapAvg, prometheus.GaugeValue, st.AverageHeapUsed, name)
	}

	var tracking float64
	if c.engine.IsMemoryTracking() {
		tracking = 1
	}
	ch <- prometheus.MustNewConstMetric(c.tracking, prometheus.GaugeValue, tracking)
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(c.engine.PendingRenders()))
}
