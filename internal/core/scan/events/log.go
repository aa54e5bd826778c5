// Package events 保存组件上报的自定义事件
//
// 每个组件标识一条有界 FIFO，超过上限时丢弃最早的事件。
package events

import (
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/pkg/types"
)

// Log 自定义事件日志
type Log struct {
	limit  int
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*queue.Queue // types.ComponentEvent
}

// New 创建事件日志；limit ≤ 0 时每个组件只保留最近一条
func New(limit int, logger *zap.Logger) *Log {
	if limit <= 0 {
		limit = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		limit:   limit,
		logger:  logger,
		entries: make(map[string]*queue.Queue),
	}
}

// Append 追加一条事件
func (l *Log) Append(identity string, ev types.ComponentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	q, ok := l.entries[identity]
	if !ok {
		q = queue.New()
		l.entries[identity] = q
	}
	q.Add(ev)
	for q.Length() > l.limit {
		dropped := q.Remove().(types.ComponentEvent)
		l.logger.Debug("自定义事件超过上限，丢弃最早一条",
			zap.String("component", identity),
			zap.String("event", dropped.Name))
	}
}

// Get 返回该组件事件的副本，按记录顺序排列
func (l *Log) Get(identity string) []types.ComponentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	q, ok := l.entries[identity]
	if !ok || q.Length() == 0 {
		return nil
	}
	out := make([]types.ComponentEvent, q.Length())
	for i := range out {
		out[i] = q.Get(i).(types.ComponentEvent)
	}
	return out
}

// Clear 清空所有事件
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = make(map[string]*queue.Queue)
	l.mu.Unlock()
}
