package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/vuescan/internal/core/infrastructure/clock"
)

func newTestRegistry() (*Registry, *clock.MockClock) {
	mc := clock.NewMockClock(time.UnixMilli(1_700_000_000_000))
	return New(mc, nil), mc
}

func TestAppearedDisappeared(t *testing.T) {
	t.Run("实例数随挂载卸载变化", func(t *testing.T) {
		r, _ := newTestRegistry()
		h1 := r.Appeared("Widget")
		h2 := r.Appeared("Widget")
		assert.NotEqual(t, h1.ID, h2.ID)
		assert.Equal(t, 2, r.Count("Widget"))

		assert.True(t, r.Disappeared("Widget"))
		assert.Equal(t, 1, r.Count("Widget"))

		// 移除的是最早的句柄
		handles := r.Handles("Widget")
		require.Len(t, handles, 1)
		assert.Equal(t, h2.ID, handles[0].ID)
	})

	t.Run("实例数不会为负", func(t *testing.T) {
		r, _ := newTestRegistry()
		assert.False(t, r.Disappeared("Ghost"))
		assert.Equal(t, 0, r.Count("Ghost"))

		r.Appeared("Widget")
		assert.True(t, r.Disappeared("Widget"))
		assert.False(t, r.Disappeared("Widget"))
		assert.Equal(t, 0, r.Count("Widget"))
	})

	t.Run("实例数为0的标识仍保留", func(t *testing.T) {
		r, _ := newTestRegistry()
		r.Appeared("Widget")
		r.Appeared("Button")
		r.Disappeared("Widget")
		assert.Equal(t, []string{"Button", "Widget"}, r.Identities())
	})
}

func TestRemove(t *testing.T) {
	r, _ := newTestRegistry()
	r.Appeared("Widget")
	h := r.Appeared("Widget")

	assert.True(t, r.Remove(h.ID))
	assert.False(t, r.Remove(h.ID), "重复移除返回 false")
	assert.False(t, r.Remove("unknown"))
	assert.Equal(t, 1, r.Count("Widget"))
}

func TestOwnerAndKnown(t *testing.T) {
	r, _ := newTestRegistry()
	assert.False(t, r.Known("Widget"))

	h := r.Appeared("Widget")
	owner, ok := r.Owner(h.ID)
	require.True(t, ok)
	assert.Equal(t, "Widget", owner)

	require.True(t, r.Remove(h.ID))
	_, ok = r.Owner(h.ID)
	assert.False(t, ok)
	assert.True(t, r.Known("Widget"), "实例数归零后标识仍然已知")
}

func TestLifecycle(t *testing.T) {
	r, mc := newTestRegistry()

	_, ok := r.Lifecycle("Widget")
	assert.False(t, ok)

	r.Appeared("Widget")
	mounted := mc.UnixMilli()
	mc.Advance(250 * time.Millisecond)
	r.Disappeared("Widget")

	lc, ok := r.Lifecycle("Widget")
	require.True(t, ok)
	assert.Equal(t, mounted, lc.MountedAt)
	assert.Equal(t, mounted+250, lc.UnmountedAt)
}

func TestConcurrentAccess(t *testing.T) {
	r, _ := newTestRegistry()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.Appeared("Widget")
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, 800, r.Count("Widget"))
}
