// Package types 提供 vuescan 的公共数据类型定义
//
// 📋 **组件指标数据模型 (Component Metrics Data Model)**
//
// 本文件定义组件渲染与内存采样相关的核心数据结构：
// - InstanceHandle: 一个已挂载的组件实例
// - RenderToken: 一次渲染周期的关联令牌
// - MemorySnapshot: 某一时刻的堆内存读数
// - ComponentStats: 以组件标识聚合的统计信息
// - ComponentEvent: 组件上报的自定义事件
//
// JSON 字段使用 camelCase，与浏览器端 overlay / devtools 面板读取的结构保持一致。
package types

import (
	"encoding/json"
	"time"
)

// AnonymousComponent 组件没有声明名称时使用的合成标识
const AnonymousComponent = "Anonymous"

// InstanceHandle 一个存活的组件实例
//
// 由实例注册表在 mount 通知时创建，在 unmount 通知时清除。
type InstanceHandle struct {
	ID        string    `json:"id"`        // 实例ID（uuid）
	Component string    `json:"component"` // 组件标识
	CreatedAt time.Time `json:"createdAt"` // 创建时间
}

// RenderToken 一次渲染周期的令牌
//
// 同一组件的不同实例并发渲染时各自持有独立令牌，互不合并。
type RenderToken struct {
	ID        string    `json:"token"`
	Component string    `json:"component"`
	StartedAt time.Time `json:"startedAt"`
}

// IsZero 判断令牌是否为空
func (t RenderToken) IsZero() bool {
	return t.ID == ""
}

// MemorySnapshot 某一组件在某一时刻的堆内存读数
type MemorySnapshot struct {
	Timestamp     int64  `json:"timestamp"` // Unix 毫秒
	Component     string `json:"component"`
	HeapUsed      uint64 `json:"heapUsed"`
	InstanceCount int    `json:"instanceCount"`
}

// ComponentStats 按组件标识聚合的统计信息
//
// 不变量：
//   - InstanceCount 等于该组件当前存活实例数（读取时由注册表覆盖）
//   - AverageRenderTime == TotalRenderTime / RenderCount（RenderCount 为 0 时为 0）
//   - MinHeapUsed ≤ 任一保留快照的 HeapUsed ≤ MaxHeapUsed
//   - Snapshots 按时间顺序追加
type ComponentStats struct {
	Component     string `json:"component"`
	InstanceCount int    `json:"instanceCount"`

	// 渲染指标（毫秒）
	RenderCount       int     `json:"renderCount"`
	LastRenderTime    float64 `json:"lastRenderTime"`
	AverageRenderTime float64 `json:"averageRenderTime"`
	TotalRenderTime   float64 `json:"totalRenderTime"`

	// 内存指标（bytes）
	LastHeapUsed    uint64           `json:"lastHeapUsed"`
	MaxHeapUsed     uint64           `json:"maxHeapUsed"`
	MinHeapUsed     uint64           `json:"minHeapUsed"`
	AverageHeapUsed float64          `json:"averageHeapUsed"`
	Snapshots       []MemorySnapshot `json:"snapshots"`

	// 生命周期时间戳（Unix 毫秒，0 表示未发生）
	MountedAt   int64 `json:"mountedAt,omitempty"`
	UnmountedAt int64 `json:"unmountedAt,omitempty"`

	// 自定义事件，按记录顺序排列
	Events []ComponentEvent `json:"events,omitempty"`
}

// ComponentEvent 组件上报的自定义事件
type ComponentEvent struct {
	Name      string          `json:"name"`
	Timestamp int64           `json:"timestamp"` // Unix 毫秒
	Data      json.RawMessage `json:"data,omitempty"`
}

// PerformanceMarker 一个命名的性能标记
type PerformanceMarker struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Timestamp int64    `json:"timestamp"`          // Unix 毫秒
	Duration  *float64 `json:"duration,omitempty"` // 毫秒
}
