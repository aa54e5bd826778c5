package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	t.Run("推进时间", func(t *testing.T) {
		c.Advance(12 * time.Millisecond)
		assert.Equal(t, 12*time.Millisecond, c.Since(start))
		assert.Equal(t, start.UnixMilli()+12, c.UnixMilli())
	})

	t.Run("直接设置", func(t *testing.T) {
		c.Set(start)
		assert.Equal(t, start, c.Now())
	})
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	c := NewSystemClock()
	assert.False(t, c.Now().Before(before))

	first := c.UnixMilli()
	assert.GreaterOrEqual(t, first, before.UnixMilli())
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, c.UnixMilli(), first, "毫秒时间戳单调不减")
}
