// Package stats 维护以组件标识聚合的统计信息
//
// 📋 **统计存储 (Stats Store)**
//
// 渲染统计与内存采样共享同一份存储。每次写入在一个临界区内完成，
// 平均值与合计/次数在同一把锁下更新，读者看到的聚合始终自洽。
//
// 快照历史使用 eapache/queue 环形队列保存，设置 maxSnapshots 后
// 从队头淘汰最旧的快照，并同步调整合计与最值。
package stats

import (
	"sort"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/pkg/types"
)

// record 单个组件标识的内部状态
type record struct {
	stats     types.ComponentStats // 不含 Snapshots
	snapshots *queue.Queue         // []types.MemorySnapshot，按时间顺序
	heapSum   float64              // 保留快照的 HeapUsed 合计
}

// Store 组件统计存储
type Store struct {
	logger       *zap.Logger
	maxSnapshots int

	mu      sync.RWMutex
	records map[string]*record
}

// New 创建统计存储；maxSnapshots 为 0 表示快照历史不设上限
func New(maxSnapshots int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSnapshots < 0 {
		maxSnapshots = 0
	}
	return &Store{
		logger:       logger,
		maxSnapshots: maxSnapshots,
		records:      make(map[string]*record),
	}
}

// RecordRender 记录一次已结算的渲染耗时（毫秒）
func (s *Store) RecordRender(identity string, durationMs float64) {
	if durationMs < 0 {
		durationMs = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.recordLocked(identity)
	r.stats.RenderCount++
	r.stats.LastRenderTime = durationMs
	r.stats.TotalRenderTime += durationMs
	r.stats.AverageRenderTime = r.stats.TotalRenderTime / float64(r.stats.RenderCount)
}

// RecordSnapshot 追加一条内存快照并更新堆统计
//
// 早于已保留最新快照的时间戳会被抬升到该时间戳，快照序列保持时间顺序。
func (s *Store) RecordSnapshot(snapshot types.MemorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.recordLocked(snapshot.Component)
	if n := r.snapshots.Length(); n > 0 {
		if last := r.snapshots.Get(n - 1).(types.MemorySnapshot).Timestamp; snapshot.Timestamp < last {
			snapshot.Timestamp = last
		}
	}
	r.snapshots.Add(snapshot)
	r.heapSum += float64(snapshot.HeapUsed)

	evicted := false
	for s.maxSnapshots > 0 && r.snapshots.Length() > s.maxSnapshots {
		old := r.snapshots.Remove().(types.MemorySnapshot)
		r.heapSum -= float64(old.HeapUsed)
		evicted = true
	}

	r.stats.InstanceCount = snapshot.InstanceCount
	r.stats.LastHeapUsed = snapshot.HeapUsed
	r.stats.AverageHeapUsed = r.heapSum / float64(r.snapshots.Length())

	if evicted {
		// 被淘汰的样本可能是最值，重新扫描保留的快照
		r.recomputeBounds()
		return
	}
	if r.snapshots.Length() == 1 {
		r.stats.MinHeapUsed = snapshot.HeapUsed
		r.stats.MaxHeapUsed = snapshot.HeapUsed
		return
	}
	if snapshot.HeapUsed > r.stats.MaxHeapUsed {
		r.stats.MaxHeapUsed = snapshot.HeapUsed
	}
	if snapshot.HeapUsed < r.stats.MinHeapUsed {
		r.stats.MinHeapUsed = snapshot.HeapUsed
	}
}

// Get 返回所有组件统计的深拷贝
func (s *Store) Get() map[string]types.ComponentStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]types.ComponentStats, len(s.records))
	for id, r := range s.records {
		out[id] = r.copy()
	}
	return out
}

// GetOne 返回单个组件统计的深拷贝
func (s *Store) GetOne(identity string) (types.ComponentStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[identity]
	if !ok {
		return types.ComponentStats{}, false
	}
	return r.copy(), true
}

// Identities 返回已有统计的组件标识（已排序）
func (s *Store) Identities() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len 返回已有统计的组件数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear 清空所有统计
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.records)
	s.records = make(map[string]*record)
	s.mu.Unlock()

	s.logger.Info("组件统计已清空", zap.Int("components", n))
}

func (s *Store) recordLocked(identity string) *record {
	r, ok := s.records[identity]
	if !ok {
		r = &record{
			stats:     types.ComponentStats{Component: identity},
			snapshots: queue.New(),
		}
		s.records[identity] = r
	}
	return r
}

func (r *record) recomputeBounds() {
	n := r.snapshots.Length()
	if n == 0 {
		r.stats.MinHeapUsed, r.stats.MaxHeapUsed = 0, 0
		return
	}
	first := r.snapshots.Get(0).(types.MemorySnapshot).HeapUsed
	minHeap, maxHeap := first, first
	for i := 1; i < n; i++ {
		h := r.snapshots.Get(i).(types.MemorySnapshot).HeapUsed
		if h < minHeap {
			minHeap = h
		}
		if h > maxHeap {
			maxHeap = h
		}
	}
	r.stats.MinHeapUsed, r.stats.MaxHeapUsed = minHeap, maxHeap
}

func (r *record) copy() types.ComponentStats {
	out := r.stats
	n := r.snapshots.Length()
	out.Snapshots = make([]types.MemorySnapshot, n)
	for i := 0; i < n; i++ {
		out.Snapshots[i] = r.snapshots.Get(i).(types.MemorySnapshot)
	}
	return out
}
