// 事件类型常量定义

package event

import "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/event"

// 扫描引擎发布的事件类型
const (
	// EventTypeMemorySampled 一次采样完成，参数：采样组件数 int
	EventTypeMemorySampled event.EventType = "scan.memory.sampled"

	// EventTypeTrackingChanged 采样启停，参数：isTracking bool
	EventTypeTrackingChanged event.EventType = "scan.memory.tracking"

	// EventTypeRenderSettled 一次渲染结算，参数：component string, durationMs float64
	EventTypeRenderSettled event.EventType = "scan.render.settled"

	// EventTypeStatsCleared 统计被清空，无参数
	EventTypeStatsCleared event.EventType = "scan.stats.cleared"

	// EventTypeComponentEvent 组件自定义事件，参数：component string, name string
	EventTypeComponentEvent event.EventType = "scan.component.event"
)
