// Package clock provides clock interfaces.
package clock

import "time"

// Clock 提供统一的时间源接口（基础设施层接口）
//
// 渲染耗时与快照时间戳都经由该接口读取，测试时替换为 MockClock
// 以得到确定的毫秒数。
type Clock interface {
	// Now 获取当前时间（包含单调时钟读数）
	Now() time.Time

	// Since 计算从指定时间到现在的持续时间
	Since(t time.Time) time.Duration

	// UnixMilli 获取当前Unix时间戳（毫秒）
	UnixMilli() int64
}
