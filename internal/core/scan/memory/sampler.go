// Package memory 周期性为每个已知组件记录堆内存快照
//
// 📋 **内存采样器 (Memory Sampler)**
//
// 状态：Idle → Tracking → Idle，初始为 Idle。
// - Start 在 Tracking 状态下重复调用不产生第二个定时器
// - Stop 取消定时器并等待采样 goroutine 退出
// - 读数失败（HeapReader 为空、返回 !ok 或 panic）时记 0，定时器不中断
// - 定时采样、手动采样与单组件采样串行执行，快照时间戳单调不减
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/types"
)

// DefaultInterval 未指定或非法间隔时的采样间隔
const DefaultInterval = 5 * time.Second

// InstanceSource 提供需要采样的组件标识与实例数
type InstanceSource interface {
	Identities() []string
	Count(identity string) int
}

// SnapshotRecorder 接收快照
type SnapshotRecorder interface {
	RecordSnapshot(snapshot types.MemorySnapshot)
}

// SampledHook 每次采样完成后调用，参数为本次采样的组件数
type SampledHook func(components int)

// Sampler 内存采样器
type Sampler struct {
	source   InstanceSource
	recorder SnapshotRecorder
	heap     HeapReader
	clock    infraClock.Clock
	logger   *zap.Logger
	onSample SampledHook

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration

	// sampleMu 覆盖从读时钟到最后一次 RecordSnapshot 的整个过程
	sampleMu sync.Mutex
	lastTs   int64
}

// NewSampler 创建内存采样器
func NewSampler(source InstanceSource, recorder SnapshotRecorder, heap HeapReader, clock infraClock.Clock, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		source:   source,
		recorder: recorder,
		heap:     heap,
		clock:    clock,
		logger:   logger,
	}
}

// OnSampled 设置采样完成回调，需在 Start 之前调用
func (s *Sampler) OnSampled(hook SampledHook) {
	s.mu.Lock()
	s.onSample = hook
	s.mu.Unlock()
}

// Start 以指定间隔开始采样；已在采样时不做任何事
func (s *Sampler) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.logger.Debug("内存采样已在运行，忽略重复启动",
			zap.Duration("interval", s.interval))
		return
	}

	// 独立的长生命周期 ctx，由 Stop 显式取消
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.interval = interval

	go s.loop(ctx, interval, s.done)

	s.logger.Info("内存采样已启动", zap.Duration("interval", interval))
}

// Stop 停止采样并等待采样 goroutine 退出；未在采样时不做任何事
func (s *Sampler) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.interval = 0
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("内存采样已停止")
}

// IsTracking 是否正在采样
func (s *Sampler) IsTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Interval 返回当前采样间隔，未采样时为 0
func (s *Sampler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Sampler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SampleOnce()
		}
	}
}

// SampleOnce 同步执行一次采样：为每个已知组件记录一条快照
func (s *Sampler) SampleOnce() int {
	s.sampleMu.Lock()
	heapUsed := s.readHeap()
	now := s.timestampLocked()

	identities := s.source.Identities()
	for _, identity := range identities {
		s.recorder.RecordSnapshot(types.MemorySnapshot{
			Timestamp:     now,
			Component:     identity,
			HeapUsed:      heapUsed,
			InstanceCount: s.source.Count(identity),
		})
	}
	s.sampleMu.Unlock()

	s.logger.Debug("内存采样完成",
		zap.Int("components", len(identities)),
		zap.Uint64("heap_used", heapUsed))

	s.notify(len(identities))
	return len(identities)
}

// SampleComponent 为单个组件记录一条快照，供挂载/卸载和手动快照使用
func (s *Sampler) SampleComponent(identity string) types.MemorySnapshot {
	s.sampleMu.Lock()
	snapshot := types.MemorySnapshot{
		HeapUsed:      s.readHeap(),
		Timestamp:     s.timestampLocked(),
		Component:     identity,
		InstanceCount: s.source.Count(identity),
	}
	s.recorder.RecordSnapshot(snapshot)
	s.sampleMu.Unlock()

	s.logger.Debug("组件快照完成",
		zap.String("component", identity),
		zap.Uint64("heap_used", snapshot.HeapUsed))

	s.notify(1)
	return snapshot
}

// timestampLocked 返回本次采样时间戳；时钟回拨时沿用上一次的值
func (s *Sampler) timestampLocked() int64 {
	now := s.clock.UnixMilli()
	if now < s.lastTs {
		s.logger.Debug("时钟回拨，沿用上一次采样时间戳",
			zap.Int64("now", now), zap.Int64("last", s.lastTs))
		now = s.lastTs
	}
	s.lastTs = now
	return now
}

func (s *Sampler) notify(components int) {
	s.mu.Lock()
	hook := s.onSample
	s.mu.Unlock()
	if hook != nil {
		hook(components)
	}
}

// readHeap 读取堆使用量；任何失败都记为 0
func (s *Sampler) readHeap() (heapUsed uint64) {
	if s.heap == nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("堆读数异常，本次记为 0", zap.Any("panic", r))
			heapUsed = 0
		}
	}()

	v, ok := s.heap()
	if !ok {
		return 0
	}
	return v
}
