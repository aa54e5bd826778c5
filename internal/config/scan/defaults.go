package scan

import "time"

// 组件扫描默认配置值
const (
	// defaultEnabled 默认启用扫描
	defaultEnabled = true

	// defaultTrackMemory 默认启用内存采样
	defaultTrackMemory = true

	// defaultMemoryTrackingInterval 内存采样间隔 5 秒
	defaultMemoryTrackingInterval = 5 * time.Second

	// defaultAutoStartMemoryTracking 插件安装时即开始采样
	defaultAutoStartMemoryTracking = true

	// defaultTrackRenderFrequency 默认统计渲染次数与耗时
	defaultTrackRenderFrequency = true

	// defaultTrackMountTime 默认记录挂载/卸载时间
	defaultTrackMountTime = true

	// defaultMaxSnapshots 0 表示快照历史不设上限
	defaultMaxSnapshots = 0

	// defaultHeapSource 默认使用浏览器上报的堆读数
	defaultHeapSource = HeapSourceReported

	// defaultSettleQueueEnabled 默认启用 FIFO 结算队列
	defaultSettleQueueEnabled = true

	// defaultPendingRenderTTL 超过 1 分钟仍未结算的渲染令牌被丢弃
	defaultPendingRenderTTL = time.Minute

	// defaultSnapshotOnLifecycle 挂载/卸载时不额外采样
	defaultSnapshotOnLifecycle = false

	// defaultMaxEvents 每个组件保留的自定义事件上限
	defaultMaxEvents = 100
)

// 堆内存读数来源
const (
	HeapSourceNone     = "none"     // 不读取，所有样本为 0
	HeapSourceRuntime  = "runtime"  // 读取本进程 Go runtime 堆
	HeapSourceReported = "reported" // 使用浏览器通过 /api/heap 上报的 usedJSHeapSize
)
