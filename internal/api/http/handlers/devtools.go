package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/core/scan"
	"github.com/weisyn/vuescan/internal/core/scan/markers"
)

// DevToolsHandler devtools 面板专用端点
//
// GET  /devtools?action=getComponentData|getPerfData|getConfig
// POST /devtools {action: clearData|updateConfig}
type DevToolsHandler struct {
	logger  *zap.Logger
	engine  *scan.Engine
	markers *markers.Store
}

// NewDevToolsHandler 创建 devtools 处理器
func NewDevToolsHandler(logger *zap.Logger, engine *scan.Engine, store *markers.Store) *DevToolsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DevToolsHandler{logger: logger, engine: engine, markers: store}
}

// RegisterRoutes 注册 devtools 路由
func (h *DevToolsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/devtools", h.Query)
	r.POST("/devtools", h.Command)
}

func unknownAction(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": false, "message": "Unknown action"})
}

// Query GET /devtools
func (h *DevToolsHandler) Query(c *gin.Context) {
	switch c.Query("action") {
	case "getComponentData":
		c.JSON(http.StatusOK, gin.H{"success": true, "data": h.engine.GetStats()})
	case "getPerfData":
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"markers":        h.markers.List(),
			"isTracking":     h.engine.IsMemoryTracking(),
			"pendingRenders": h.engine.PendingRenders(),
		}})
	case "getConfig":
		c.JSON(http.StatusOK, gin.H{"success": true, "data": h.engine.Options()})
	default:
		unknownAction(c)
	}
}

// Command POST /devtools
func (h *DevToolsHandler) Command(c *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Failed to process request",
			"error":   err.Error(),
		})
		return
	}

	switch req.Action {
	case "clearData":
		h.engine.ClearStats()
		if err := h.markers.Clear(); err != nil {
			h.logger.Warn("清空性能标记失败", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data cleared"})
	case "updateConfig":
		// 运行时配置不可修改，仅确认收到
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Configuration updated"})
	default:
		unknownAction(c)
	}
}
