package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/pkg/types"
)

// LifecycleHandler 接收浏览器钩子脚本上报的组件生命周期
//
// 组件名为空时按 Anonymous 处理；被忽略的组件返回空句柄或空令牌。
type LifecycleHandler struct {
	logger *zap.Logger
	engine *scan.Engine
}

// NewLifecycleHandler 创建生命周期上报处理器
func NewLifecycleHandler(logger *zap.Logger, engine *scan.Engine) *LifecycleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleHandler{logger: logger, engine: engine}
}

// RegisterRoutes 注册生命周期路由
func (h *LifecycleHandler) RegisterRoutes(r *gin.RouterGroup) {
	lc := r.Group("/lifecycle")
	{
		lc.POST("/mounted", h.Mounted)
		lc.POST("/unmounted", h.Unmounted)
		lc.POST("/render-start", h.RenderStart)
		lc.POST("/render-settled", h.RenderSettled)
		lc.POST("/updated", h.Updated)
		lc.POST("/event", h.Event)
	}
	r.POST("/heap", h.Heap)
	r.GET("/events/:component", h.Events)
}

func (h *LifecycleHandler) bindComponent(c *gin.Context) (string, bool) {
	var req componentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return "", false
	}
	return req.Component, true
}

// Mounted POST /lifecycle/mounted {component}
func (h *LifecycleHandler) Mounted(c *gin.Context) {
	component, ok := h.bindComponent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.NotifyMounted(component))
}

// Unmounted POST /lifecycle/unmounted {component, handleId?}
func (h *LifecycleHandler) Unmounted(c *gin.Context) {
	var req struct {
		Component string `json:"component"`
		HandleID  string `json:"handleId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var removed bool
	if req.HandleID != "" {
		removed = h.engine.NotifyInstanceRemoved(req.HandleID)
	} else {
		removed = h.engine.NotifyUnmounted(req.Component)
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// RenderStart POST /lifecycle/render-start {component}
func (h *LifecycleHandler) RenderStart(c *gin.Context) {
	component, ok := h.bindComponent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.NotifyRenderStart(component))
}

// RenderSettled POST /lifecycle/render-settled {token}
func (h *LifecycleHandler) RenderSettled(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	duration, settled := h.engine.NotifyRenderSettledID(req.Token)
	c.JSON(http.StatusOK, gin.H{"settled": settled, "duration": duration})
}

// Updated POST /lifecycle/updated {component}
func (h *LifecycleHandler) Updated(c *gin.Context) {
	component, ok := h.bindComponent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.NotifyUpdated(component))
}

// Heap POST /heap {usedJSHeapSize}
func (h *LifecycleHandler) Heap(c *gin.Context) {
	var req struct {
		UsedJSHeapSize *uint64 `json:"usedJSHeapSize"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UsedJSHeapSize == nil {
		respondError(c, http.StatusBadRequest, "usedJSHeapSize is required")
		return
	}
	h.engine.ReportHeap(*req.UsedJSHeapSize)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Event POST /lifecycle/event {component, name, data?}
//
// 组件从未挂载过或事件名为空时 recorded 为 false。
func (h *LifecycleHandler) Event(c *gin.Context) {
	var req struct {
		Component string          `json:"component"`
		Name      string          `json:"name"`
		Data      json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": h.engine.TrackEvent(req.Component, req.Name, req.Data)})
}

// Events GET /events/:component
func (h *LifecycleHandler) Events(c *gin.Context) {
	events := h.engine.ComponentEvents(c.Param("component"))
	if events == nil {
		events = []types.ComponentEvent{}
	}
	c.JSON(http.StatusOK, events)
}
