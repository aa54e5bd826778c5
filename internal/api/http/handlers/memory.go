package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/internal/core/scan/memory"
)

// maxIntervalMs interval_ms 上限（24 小时）
const maxIntervalMs = 24 * 60 * 60 * 1000

// MemoryHandler 组件统计与内存采样控制端点
//
// 📊 **内存监控接口**
//
// - GET  /memory-stats              全部组件统计
// - GET  /memory-stats/:component   单个组件统计
// - POST /memory-start?interval_ms= 开始采样
// - POST /memory-stop               停止采样
// - POST /memory-clear              清空统计
// - POST /memory-sample             立即采样一次
// - POST /memory-sample/:component  立即为单个组件采样
// - GET  /memory-status             采样状态
type MemoryHandler struct {
	logger *zap.Logger
	engine *scan.Engine
}

// NewMemoryHandler 创建内存监控处理器
func NewMemoryHandler(logger *zap.Logger, engine *scan.Engine) *MemoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryHandler{logger: logger, engine: engine}
}

// RegisterRoutes 注册内存监控路由
func (h *MemoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/memory-stats", h.GetStats)
	r.GET("/memory-stats/:component", h.GetComponentStats)
	r.POST("/memory-start", h.Start)
	r.POST("/memory-stop", h.Stop)
	r.POST("/memory-clear", h.Clear)
	r.POST("/memory-sample", h.Sample)
	r.POST("/memory-sample/:component", h.SampleComponent)
	r.GET("/memory-status", h.Status)
}

// GetStats GET /memory-stats
func (h *MemoryHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.GetStats())
}

// GetComponentStats GET /memory-stats/:component
func (h *MemoryHandler) GetComponentStats(c *gin.Context) {
	component := c.Param("component")
	st, ok := h.engine.GetComponentStats(component)
	if !ok {
		respondError(c, http.StatusNotFound, "component not found: "+component)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Start POST /memory-start
//
// interval_ms 省略时使用配置的采样间隔，取值范围 [1, 86400000]。
func (h *MemoryHandler) Start(c *gin.Context) {
	var interval time.Duration
	if raw := c.Query("interval_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 || ms > maxIntervalMs {
			respondError(c, http.StatusBadRequest, "interval_ms must be an integer between 1 and 86400000")
			return
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	h.engine.StartMemoryTracking(interval)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stop POST /memory-stop
func (h *MemoryHandler) Stop(c *gin.Context) {
	h.engine.StopMemoryTracking()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Clear POST /memory-clear
func (h *MemoryHandler) Clear(c *gin.Context) {
	h.engine.ClearStats()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Sample POST /memory-sample
func (h *MemoryHandler) Sample(c *gin.Context) {
	n := h.engine.SampleMemoryNow()
	c.JSON(http.StatusOK, gin.H{"success": true, "components": n})
}

// SampleComponent POST /memory-sample/:component
func (h *MemoryHandler) SampleComponent(c *gin.Context) {
	component := c.Param("component")
	snapshot, ok := h.engine.TakeSnapshot(component)
	if !ok {
		respondError(c, http.StatusNotFound, "component not found: "+component)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Status GET /memory-status
func (h *MemoryHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"isTracking":       h.engine.IsMemoryTracking(),
		"intervalMs":       h.engine.MemoryTrackingInterval().Milliseconds(),
		"components":       len(h.engine.KnownComponents()),
		"pendingRenders":   h.engine.PendingRenders(),
		"queuedSettles":    h.engine.QueuedSettles(),
		"systemTotalBytes": memory.SystemTotalMemory(),
	})
}
