// Package scan 组件渲染与内存观测引擎
//
// 📋 **扫描引擎 (Scan Engine)**
//
// Engine 是通知与控制/查询接口的唯一入口，组合以下部件：
// - registry.Registry: 组件标识 → 存活实例
// - render.Tracker: begin/settle 渲染计时
// - memory.Sampler: 定时堆内存采样
// - stats.Store: 聚合统计
// - events.Log: 组件自定义事件
//
// 开启 SnapshotOnLifecycle 后，挂载完成与卸载之后各为该组件采样一次，
// 快照中的实例数已包含本次变化。
//
// 生产者（浏览器钩子脚本经 HTTP 适配层）调用 Notify*，
// 消费者（overlay / devtools / CLI）调用 Get*。
// 所有操作都不返回错误：忽略列表中的组件、关闭的开关、
// 顺序异常都只是静默跳过或记录 debug 日志。
package scan

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	scanconfig "github.com/weisyn/vuescan/internal/config/scan"
	eventbus "github.com/weisyn/vuescan/internal/core/infrastructure/event"
	"github.com/weisyn/vuescan/internal/core/scan/events"
	"github.com/weisyn/vuescan/internal/core/scan/memory"
	"github.com/weisyn/vuescan/internal/core/scan/registry"
	"github.com/weisyn/vuescan/internal/core/scan/render"
	"github.com/weisyn/vuescan/internal/core/scan/stats"
	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/vuescan/pkg/types"
)

// Engine 扫描引擎
type Engine struct {
	options *scanconfig.ScanOptions
	clock   infraClock.Clock
	bus     event.EventBus
	logger  *zap.Logger

	registry *registry.Registry
	store    *stats.Store
	tracker  *render.Tracker
	sampler  *memory.Sampler
	reported *memory.ReportedHeap
	events   *events.Log
	ignore   map[string]struct{}
}

// NewEngine 创建扫描引擎；bus 可以为 nil
func NewEngine(options *scanconfig.ScanOptions, clock infraClock.Clock, bus event.EventBus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = scanconfig.New(nil).GetOptions()
	}

	e := &Engine{
		options:  options,
		clock:    clock,
		bus:      bus,
		logger:   logger,
		reported: memory.NewReportedHeap(),
		ignore:   make(map[string]struct{}, len(options.Ignore)),
	}
	for _, name := range options.Ignore {
		e.ignore[name] = struct{}{}
	}

	e.registry = registry.New(clock, logger.With(zap.String("component", "registry")))
	e.store = stats.New(options.MaxSnapshots, logger.With(zap.String("component", "stats")))
	e.tracker = render.New(clock, e.store, render.Options{
		SettleQueueEnabled: options.SettleQueueEnabled,
		OnSettled:          e.onRenderSettled,
		PendingTTL:         options.PendingRenderTTL,
	}, logger.With(zap.String("component", "render")))
	e.sampler = memory.NewSampler(e.registry, e.store, e.heapReader(), clock,
		logger.With(zap.String("component", "memory")))
	e.sampler.OnSampled(e.onMemorySampled)
	e.events = events.New(options.MaxEvents, logger.With(zap.String("component", "events")))

	return e
}

// heapReader 按配置选择堆读数来源
func (e *Engine) heapReader() memory.HeapReader {
	switch e.options.HeapSource {
	case scanconfig.HeapSourceNone:
		return memory.NoneHeapReader
	case scanconfig.HeapSourceRuntime:
		return memory.RuntimeHeapReader
	default:
		return e.reported.Read
	}
}

// normalize 规范化组件标识；返回 false 表示该组件应被忽略
func (e *Engine) normalize(identity string) (string, bool) {
	if !e.options.Enabled {
		return "", false
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = types.AnonymousComponent
	}
	if _, ignored := e.ignore[identity]; ignored {
		return "", false
	}
	return identity, true
}

// ==================== 通知接口 ====================

// NotifyMounted 组件实例挂载；被忽略时返回空句柄
func (e *Engine) NotifyMounted(identity string) types.InstanceHandle {
	id, ok := e.normalize(identity)
	if !ok {
		return types.InstanceHandle{}
	}
	handle := e.registry.Appeared(id)
	e.lifecycleSnapshot(id)
	return handle
}

// NotifyUnmounted 组件实例卸载
func (e *Engine) NotifyUnmounted(identity string) bool {
	id, ok := e.normalize(identity)
	if !ok {
		return false
	}
	if !e.registry.Disappeared(id) {
		return false
	}
	e.lifecycleSnapshot(id)
	return true
}

// NotifyInstanceRemoved 按句柄ID移除实例
func (e *Engine) NotifyInstanceRemoved(handleID string) bool {
	id, ok := e.registry.Owner(handleID)
	if !ok || !e.registry.Remove(handleID) {
		return false
	}
	e.lifecycleSnapshot(id)
	return true
}

func (e *Engine) lifecycleSnapshot(identity string) {
	if e.options.SnapshotOnLifecycle && e.options.TrackMemory {
		e.sampler.SampleComponent(identity)
	}
}

// TrackEvent 记录组件自定义事件；组件未出现过或名称为空时返回 false
func (e *Engine) TrackEvent(identity, name string, data json.RawMessage) bool {
	id, ok := e.normalize(identity)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return false
	}
	if !e.registry.Known(id) {
		e.logger.Debug("未知组件的自定义事件，已忽略",
			zap.String("component", id), zap.String("event", name))
		return false
	}

	ev := types.ComponentEvent{Name: name, Timestamp: e.clock.UnixMilli(), Data: data}
	e.events.Append(id, ev)
	e.publish(eventbus.EventTypeComponentEvent, id, name)
	return true
}

// NotifyRenderStart 渲染开始；未启用渲染统计或组件被忽略时返回空令牌
func (e *Engine) NotifyRenderStart(identity string) types.RenderToken {
	id, ok := e.normalize(identity)
	if !ok || !e.options.TrackRenderFrequency {
		return types.RenderToken{}
	}
	return e.tracker.Begin(id)
}

// NotifyRenderSettled 渲染结束
func (e *Engine) NotifyRenderSettled(token types.RenderToken) bool {
	if token.IsZero() {
		return false
	}
	_, ok := e.tracker.Settle(token)
	return ok
}

// NotifyRenderSettledID 按令牌ID结束渲染，返回耗时（毫秒）
func (e *Engine) NotifyRenderSettledID(tokenID string) (float64, bool) {
	if tokenID == "" {
		return 0, false
	}
	return e.tracker.SettleID(tokenID)
}

// NotifyUpdated 组件更新：立即 begin，结算进入 FIFO 结算队列
func (e *Engine) NotifyUpdated(identity string) types.RenderToken {
	id, ok := e.normalize(identity)
	if !ok || !e.options.TrackRenderFrequency {
		return types.RenderToken{}
	}
	return e.tracker.BeginDeferred(id)
}

// ReportHeap 记录浏览器上报的堆使用量（bytes）
func (e *Engine) ReportHeap(bytes uint64) {
	e.reported.Set(bytes)
}

// ==================== 控制接口 ====================

// StartMemoryTracking 开始内存采样；interval ≤ 0 使用配置的间隔
func (e *Engine) StartMemoryTracking(interval time.Duration) {
	if interval <= 0 {
		interval = e.options.MemoryTrackingInterval
	}
	wasTracking := e.sampler.IsTracking()
	e.sampler.Start(interval)
	if !wasTracking {
		e.publish(eventbus.EventTypeTrackingChanged, true)
	}
}

// StopMemoryTracking 停止内存采样
func (e *Engine) StopMemoryTracking() {
	if !e.sampler.IsTracking() {
		return
	}
	e.sampler.Stop()
	e.publish(eventbus.EventTypeTrackingChanged, false)
}

// IsMemoryTracking 是否正在采样
func (e *Engine) IsMemoryTracking() bool {
	return e.sampler.IsTracking()
}

// MemoryTrackingInterval 当前采样间隔，未采样时为 0
func (e *Engine) MemoryTrackingInterval() time.Duration {
	return e.sampler.Interval()
}

// SampleMemoryNow 立即执行一次采样，返回采样的组件数
func (e *Engine) SampleMemoryNow() int {
	return e.sampler.SampleOnce()
}

// TakeSnapshot 立即为单个组件采样；组件被忽略或从未出现过时返回 false
func (e *Engine) TakeSnapshot(identity string) (types.MemorySnapshot, bool) {
	id, ok := e.normalize(identity)
	if !ok || !e.registry.Known(id) {
		return types.MemorySnapshot{}, false
	}
	return e.sampler.SampleComponent(id), true
}

// ClearStats 清空所有组件统计与自定义事件；不影响存活实例与采样状态
func (e *Engine) ClearStats() {
	e.store.Clear()
	e.events.Clear()
	e.publish(eventbus.EventTypeStatsCleared)
}

// Flush 等待排队中的延迟结算全部完成
func (e *Engine) Flush() {
	e.tracker.Flush()
}

// Close 停止采样并排空结算队列
func (e *Engine) Close() {
	e.sampler.Stop()
	e.tracker.Close()
}

// ==================== 查询接口 ====================

// GetStats 返回所有组件统计的副本
//
// InstanceCount 与生命周期时间戳在读取时由注册表覆盖，始终反映当前存活实例数。
func (e *Engine) GetStats() map[string]types.ComponentStats {
	all := e.store.Get()
	for id, st := range all {
		all[id] = e.overlay(st)
	}
	return all
}

// GetComponentStats 返回单个组件统计的副本
func (e *Engine) GetComponentStats(identity string) (types.ComponentStats, bool) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = types.AnonymousComponent
	}
	st, ok := e.store.GetOne(identity)
	if !ok {
		return types.ComponentStats{}, false
	}
	return e.overlay(st), true
}

// InstanceCount 返回组件当前存活实例数
func (e *Engine) InstanceCount(identity string) int {
	return e.registry.Count(identity)
}

// KnownComponents 返回出现过的全部组件标识（已排序）
func (e *Engine) KnownComponents() []string {
	return e.registry.Identities()
}

// ComponentEvents 返回组件的自定义事件
func (e *Engine) ComponentEvents(identity string) []types.ComponentEvent {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = types.AnonymousComponent
	}
	return e.events.Get(identity)
}

// PendingRenders 返回尚未结算的渲染数，超时令牌先被清理
func (e *Engine) PendingRenders() int {
	e.tracker.Sweep()
	return e.tracker.Pending()
}

// QueuedSettles 返回结算队列中等待执行的结算数
func (e *Engine) QueuedSettles() int {
	return e.tracker.Queued()
}

// Options 返回引擎配置
func (e *Engine) Options() scanconfig.ScanOptions {
	opts := *e.options
	opts.Ignore = append([]string(nil), e.options.Ignore...)
	return opts
}

func (e *Engine) overlay(st types.ComponentStats) types.ComponentStats {
	st.InstanceCount = e.registry.Count(st.Component)
	if e.options.TrackMountTime {
		if lc, ok := e.registry.Lifecycle(st.Component); ok {
			st.MountedAt = lc.MountedAt
			st.UnmountedAt = lc.UnmountedAt
		}
	}
	st.Events = e.events.Get(st.Component)
	return st
}

// ==================== 事件 ====================

func (e *Engine) onRenderSettled(token types.RenderToken, durationMs float64) {
	e.publish(eventbus.EventTypeRenderSettled, token.Component, durationMs)
}

func (e *Engine) onMemorySampled(components int) {
	e.publish(eventbus.EventTypeMemorySampled, components)
}

func (e *Engine) publish(eventType event.EventType, args ...interface{}) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventType, args...)
}
