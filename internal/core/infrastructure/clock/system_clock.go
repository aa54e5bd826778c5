// Package clock 提供系统时钟与测试时钟实现
package clock

import (
	"time"

	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
)

// SystemClock 使用系统真实时间
//
// UnixMilli 以创建时的墙钟为基准加上单调时钟经过的时间，墙钟回拨不会让它倒退。
type SystemClock struct {
	base time.Time
}

func NewSystemClock() infraClock.Clock { return &SystemClock{base: time.Now()} }

func (c *SystemClock) Now() time.Time                  { return time.Now() }
func (c *SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (c *SystemClock) UnixMilli() int64 {
	return c.base.UnixMilli() + time.Since(c.base).Milliseconds()
}
