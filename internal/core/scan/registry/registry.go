// Package registry 维护组件标识到存活实例的映射
//
// 📋 **实例注册表 (Instance Registry)**
//
// 职责：
// - mount 通知时为组件标识新增一个实例句柄
// - unmount 通知时移除最早的实例句柄（数量不会为负）
// - 记录每个标识最近一次挂载/卸载时间
// - 记住所有出现过的标识，即使当前实例数为 0
//
// 所有操作都不返回错误，也不会 panic。
package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/types"
)

// Lifecycle 组件标识的生命周期时间戳（Unix 毫秒，0 表示未发生）
type Lifecycle struct {
	MountedAt   int64
	UnmountedAt int64
}

// entry 单个组件标识的状态
type entry struct {
	handles   []types.InstanceHandle // 按创建顺序排列
	lifecycle Lifecycle
}

// Registry 实例注册表
type Registry struct {
	clock  infraClock.Clock
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	byID    map[string]string // handleID -> identity
}

// New 创建实例注册表
func New(clock infraClock.Clock, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		clock:   clock,
		logger:  logger,
		entries: make(map[string]*entry),
		byID:    make(map[string]string),
	}
}

// Appeared 记录一个新挂载的实例
func (r *Registry) Appeared(identity string) types.InstanceHandle {
	now := r.clock.Now()
	handle := types.InstanceHandle{
		ID:        uuid.New().String(),
		Component: identity,
		CreatedAt: now,
	}

	r.mu.Lock()
	e := r.entryLocked(identity)
	e.handles = append(e.handles, handle)
	e.lifecycle.MountedAt = now.UnixMilli()
	r.byID[handle.ID] = identity
	count := len(e.handles)
	r.mu.Unlock()

	r.logger.Debug("实例挂载",
		zap.String("component", identity),
		zap.String("handle_id", handle.ID),
		zap.Int("instance_count", count))

	return handle
}

// Disappeared 移除该标识最早的一个实例
//
// 实例数已为 0 时不做任何事并返回 false。
func (r *Registry) Disappeared(identity string) bool {
	r.mu.Lock()
	e, ok := r.entries[identity]
	if !ok || len(e.handles) == 0 {
		r.mu.Unlock()
		r.logger.Debug("卸载通知没有对应的存活实例，已忽略", zap.String("component", identity))
		return false
	}

	oldest := e.handles[0]
	e.handles = e.handles[1:]
	delete(r.byID, oldest.ID)
	e.lifecycle.UnmountedAt = r.clock.UnixMilli()
	r.mu.Unlock()

	r.logger.Debug("实例卸载",
		zap.String("component", identity),
		zap.String("handle_id", oldest.ID))
	return true
}

// Remove 按句柄ID移除指定实例
func (r *Registry) Remove(handleID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byID[handleID]
	if !ok {
		return false
	}
	delete(r.byID, handleID)

	e := r.entries[identity]
	for i, h := range e.handles {
		if h.ID == handleID {
			e.handles = append(e.handles[:i], e.handles[i+1:]...)
			break
		}
	}
	e.lifecycle.UnmountedAt = r.clock.UnixMilli()
	return true
}

// Owner 返回句柄所属的组件标识
func (r *Registry) Owner(handleID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[handleID]
	return identity, ok
}

// Known 判断该标识是否出现过
func (r *Registry) Known(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[identity]
	return ok
}

// Count 返回该标识当前存活的实例数，未知标识返回 0
func (r *Registry) Count(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[identity]; ok {
		return len(e.handles)
	}
	return 0
}

// Identities 返回所有出现过的组件标识（已排序）
func (r *Registry) Identities() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Handles 返回该标识当前存活实例的副本
func (r *Registry) Handles(identity string) []types.InstanceHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[identity]
	if !ok {
		return nil
	}
	out := make([]types.InstanceHandle, len(e.handles))
	copy(out, e.handles)
	return out
}

// Lifecycle 返回该标识最近的挂载/卸载时间
func (r *Registry) Lifecycle(identity string) (Lifecycle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[identity]
	if !ok {
		return Lifecycle{}, false
	}
	return e.lifecycle, true
}

func (r *Registry) entryLocked(identity string) *entry {
	e, ok := r.entries[identity]
	if !ok {
		e = &entry{}
		r.entries[identity] = e
	}
	return e
}
