package render

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/vuescan/internal/core/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/types"
)

// fakeRecorder 按调用顺序记录结算
type fakeRecorder struct {
	mu    sync.Mutex
	calls []float64
	ids   []string
}

func (f *fakeRecorder) RecordRender(identity string, durationMs float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, identity)
	f.calls = append(f.calls, durationMs)
}

func newTestTracker(queueEnabled bool) (*Tracker, *clock.MockClock, *fakeRecorder) {
	mc := clock.NewMockClock(time.Unix(0, 0))
	rec := &fakeRecorder{}
	return New(mc, rec, Options{SettleQueueEnabled: queueEnabled}, nil), mc, rec
}

func TestBeginSettle(t *testing.T) {
	t.Run("耗时以毫秒计", func(t *testing.T) {
		tr, mc, rec := newTestTracker(false)
		token := tr.Begin("Widget")
		mc.Advance(12 * time.Millisecond)

		d, ok := tr.Settle(token)
		require.True(t, ok)
		assert.Equal(t, 12.0, d)
		assert.Equal(t, []float64{12}, rec.calls)
	})

	t.Run("重复结算被忽略", func(t *testing.T) {
		tr, _, rec := newTestTracker(false)
		token := tr.Begin("Widget")
		_, ok := tr.Settle(token)
		require.True(t, ok)

		_, ok = tr.Settle(token)
		assert.False(t, ok)
		_, ok = tr.SettleID("unknown")
		assert.False(t, ok)
		assert.Len(t, rec.calls, 1)
	})

	t.Run("重叠渲染分别计时", func(t *testing.T) {
		tr, mc, rec := newTestTracker(false)
		a := tr.Begin("Widget")
		mc.Advance(5 * time.Millisecond)
		b := tr.Begin("Widget")
		mc.Advance(5 * time.Millisecond)

		assert.Equal(t, 2, tr.Pending())
		tr.Settle(b)
		tr.Settle(a)
		assert.Equal(t, []float64{5, 10}, rec.calls)
		assert.Equal(t, 0, tr.Pending())
	})

	t.Run("结算回调", func(t *testing.T) {
		mc := clock.NewMockClock(time.Unix(0, 0))
		var got types.RenderToken
		tr := New(mc, &fakeRecorder{}, Options{OnSettled: func(tok types.RenderToken, _ float64) { got = tok }}, nil)
		token := tr.Begin("Widget")
		tr.Settle(token)
		assert.Equal(t, token.ID, got.ID)
	})
}

func TestBeginDeferred(t *testing.T) {
	t.Run("FIFO 顺序结算", func(t *testing.T) {
		tr, _, rec := newTestTracker(true)
		defer tr.Close()

		for _, id := range []string{"A", "B", "C", "A"} {
			tr.BeginDeferred(id)
		}
		tr.Flush()

		rec.mu.Lock()
		defer rec.mu.Unlock()
		assert.Equal(t, []string{"A", "B", "C", "A"}, rec.ids)
		assert.Equal(t, 0, tr.Pending())
	})

	t.Run("关闭后立即结算", func(t *testing.T) {
		tr, _, rec := newTestTracker(true)
		tr.Close()
		tr.Close()

		tr.BeginDeferred("Widget")
		tr.Flush()
		assert.Len(t, rec.calls, 1)
	})

	t.Run("未启用队列时同步结算", func(t *testing.T) {
		tr, _, rec := newTestTracker(false)
		tr.BeginDeferred("Widget")
		assert.Len(t, rec.calls, 1)
	})
}

func TestPendingTTL(t *testing.T) {
	newTTLTracker := func(ttl time.Duration) (*Tracker, *clock.MockClock, *fakeRecorder) {
		mc := clock.NewMockClock(time.Unix(0, 0))
		rec := &fakeRecorder{}
		return New(mc, rec, Options{PendingTTL: ttl}, nil), mc, rec
	}

	t.Run("超时令牌在下一次 Begin 时被丢弃", func(t *testing.T) {
		tr, mc, rec := newTTLTracker(time.Second)
		stale := tr.Begin("Widget")
		mc.Advance(1500 * time.Millisecond)

		fresh := tr.Begin("Widget")
		assert.Equal(t, 1, tr.Pending())

		_, ok := tr.Settle(stale)
		assert.False(t, ok)
		d, ok := tr.Settle(fresh)
		require.True(t, ok)
		assert.Equal(t, 0.0, d)
		assert.Len(t, rec.calls, 1)
	})

	t.Run("Sweep 只丢弃超时令牌", func(t *testing.T) {
		tr, mc, _ := newTTLTracker(time.Second)
		tr.Begin("A")
		mc.Advance(600 * time.Millisecond)
		tr.Begin("B")
		mc.Advance(600 * time.Millisecond)

		assert.Equal(t, 1, tr.Sweep())
		assert.Equal(t, 1, tr.Pending())
	})

	t.Run("TTL 为 0 时永久保留", func(t *testing.T) {
		tr, mc, _ := newTTLTracker(0)
		tr.Begin("Widget")
		mc.Advance(24 * time.Hour)
		tr.Begin("Widget")

		assert.Equal(t, 0, tr.Sweep())
		assert.Equal(t, 2, tr.Pending())
	})
}

func TestQueued(t *testing.T) {
	tr, _, rec := newTestTracker(true)
	defer tr.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, tr.queue.push(func() {
		close(started)
		<-release
	}))
	<-started

	tr.BeginDeferred("A")
	tr.BeginDeferred("B")
	assert.Equal(t, 2, tr.Queued())

	close(release)
	tr.Flush()
	assert.Equal(t, 0, tr.Queued())
	assert.Len(t, rec.calls, 2)

	plain, _, _ := newTestTracker(false)
	assert.Equal(t, 0, plain.Queued(), "未启用队列")
}
