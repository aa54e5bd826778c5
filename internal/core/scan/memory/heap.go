package memory

import (
	"runtime"
	"sync/atomic"

	"github.com/pbnjay/memory"
)

// HeapReader 读取当前堆使用量（bytes）
//
// ok 为 false 表示宿主不提供该能力，采样记为 0。
type HeapReader func() (uint64, bool)

// NoneHeapReader 不提供堆读数
func NoneHeapReader() (uint64, bool) {
	return 0, false
}

// RuntimeHeapReader 读取本进程 Go runtime 的 HeapAlloc
func RuntimeHeapReader() (uint64, bool) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, true
}

// ReportedHeap 保存浏览器上报的 usedJSHeapSize
//
// 由 /api/heap 写入，采样时读取最近一次上报值；从未上报时 ok 为 false。
type ReportedHeap struct {
	value    atomic.Uint64
	reported atomic.Bool
}

// NewReportedHeap 创建上报堆读数源
func NewReportedHeap() *ReportedHeap {
	return &ReportedHeap{}
}

// Set 记录一次上报
func (h *ReportedHeap) Set(bytes uint64) {
	h.value.Store(bytes)
	h.reported.Store(true)
}

// Read 实现 HeapReader
func (h *ReportedHeap) Read() (uint64, bool) {
	if !h.reported.Load() {
		return 0, false
	}
	return h.value.Load(), true
}

// SystemTotalMemory 返回宿主机物理内存总量（bytes），未知时为 0
func SystemTotalMemory() uint64 {
	return memory.TotalMemory()
}
