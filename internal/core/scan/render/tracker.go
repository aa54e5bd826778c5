// Package render 跟踪组件渲染周期并把耗时折算进统计存储
//
// 📋 **渲染指标跟踪器 (Render Metrics Tracker)**
//
// 每次 Begin 返回独立的令牌，同一组件不同实例的重叠渲染分别计时。
// Settle 以毫秒为单位计算 now - start，并写入统计存储。
// 未知或已结算的令牌被忽略，仅记录 debug 日志。
//
// BeginDeferred 把 begin 与 settle 拆到两个时刻：begin 立即发生，
// settle 进入 FIFO 结算队列，由专用 goroutine 依序执行。
//
// 设置 PendingTTL 后，超过该时长仍未结算的令牌在下一次 Begin 或
// Sweep 时被丢弃，不计入任何统计。
package render

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/types"
)

// Recorder 接收已结算的渲染耗时
type Recorder interface {
	RecordRender(identity string, durationMs float64)
}

// SettledHook 每次结算成功后调用
type SettledHook func(token types.RenderToken, durationMs float64)

// Options 跟踪器选项
type Options struct {
	// SettleQueueEnabled 为 false 时 BeginDeferred 在调用方 goroutine 中立即结算
	SettleQueueEnabled bool
	// OnSettled 结算回调（可选）
	OnSettled SettledHook
	// PendingTTL 未结算令牌的保留时长，0 表示永久保留
	PendingTTL time.Duration
}

// Tracker 渲染指标跟踪器
type Tracker struct {
	clock    infraClock.Clock
	recorder Recorder
	logger   *zap.Logger
	onSettle SettledHook
	ttl      time.Duration

	mu        sync.Mutex
	pending   map[string]types.RenderToken
	lastSweep time.Time

	queue *settleQueue
}

// New 创建渲染跟踪器
func New(clock infraClock.Clock, recorder Recorder, opts Options, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		clock:    clock,
		recorder: recorder,
		logger:   logger,
		onSettle:  opts.OnSettled,
		ttl:       opts.PendingTTL,
		pending:   make(map[string]types.RenderToken),
		lastSweep: clock.Now(),
	}
	if opts.SettleQueueEnabled {
		t.queue = newSettleQueue()
	}
	return t
}

// Begin 开始一次渲染周期
func (t *Tracker) Begin(identity string) types.RenderToken {
	token := types.RenderToken{
		ID:        uuid.New().String(),
		Component: identity,
		StartedAt: t.clock.Now(),
	}

	t.mu.Lock()
	if t.ttl > 0 && token.StartedAt.Sub(t.lastSweep) >= t.ttl {
		t.sweepLocked(token.StartedAt)
	}
	t.pending[token.ID] = token
	t.mu.Unlock()

	return token
}

// Sweep 立即丢弃超过保留时长的未结算令牌，返回丢弃数量
func (t *Tracker) Sweep() int {
	if t.ttl <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked(t.clock.Now())
}

func (t *Tracker) sweepLocked(now time.Time) int {
	t.lastSweep = now
	evicted := 0
	for id, token := range t.pending {
		if now.Sub(token.StartedAt) < t.ttl {
			continue
		}
		delete(t.pending, id)
		evicted++
		t.logger.Debug("渲染令牌超时未结算，已丢弃",
			zap.String("token", id),
			zap.String("component", token.Component),
			zap.Duration("age", now.Sub(token.StartedAt)))
	}
	return evicted
}

// Settle 结束一次渲染周期，返回耗时（毫秒）
func (t *Tracker) Settle(token types.RenderToken) (float64, bool) {
	return t.SettleID(token.ID)
}

// SettleID 按令牌ID结束一次渲染周期
func (t *Tracker) SettleID(tokenID string) (float64, bool) {
	t.mu.Lock()
	token, ok := t.pending[tokenID]
	if ok {
		delete(t.pending, tokenID)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Debug("未知或已结算的渲染令牌，已忽略", zap.String("token", tokenID))
		return 0, false
	}

	elapsed := t.clock.Since(token.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	durationMs := float64(elapsed) / float64(time.Millisecond)

	t.recorder.RecordRender(token.Component, durationMs)
	if t.onSettle != nil {
		t.onSettle(token, durationMs)
	}
	return durationMs, true
}

// BeginDeferred 开始一次渲染，并把结算放入 FIFO 结算队列
func (t *Tracker) BeginDeferred(identity string) types.RenderToken {
	token := t.Begin(identity)
	if t.queue == nil || !t.queue.push(func() { t.Settle(token) }) {
		t.Settle(token)
	}
	return token
}

// Pending 返回尚未结算的渲染数
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Queued 返回结算队列中等待执行的任务数
func (t *Tracker) Queued() int {
	if t.queue == nil {
		return 0
	}
	return t.queue.pending()
}

// Flush 阻塞直到此前排队的结算全部执行
func (t *Tracker) Flush() {
	if t.queue != nil {
		t.queue.flush()
	}
}

// Close 执行完排队的结算后停止结算队列；之后 BeginDeferred 立即结算
func (t *Tracker) Close() {
	if t.queue != nil {
		t.queue.close()
	}
}
