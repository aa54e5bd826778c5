package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/vuescan/internal/core/scan/markers"
)

// PerformanceHandler 性能标记端点
//
// - GET    /performance       列出保留期内的标记
// - POST   /performance       记录标记 {name, duration?}
// - DELETE /performance       清空标记
// - DELETE /performance/:id   删除单个标记
type PerformanceHandler struct {
	logger  *zap.Logger
	markers *markers.Store
}

// NewPerformanceHandler 创建性能标记处理器
func NewPerformanceHandler(logger *zap.Logger, store *markers.Store) *PerformanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceHandler{logger: logger, markers: store}
}

// RegisterRoutes 注册性能标记路由
func (h *PerformanceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/performance", h.List)
	r.POST("/performance", h.Mark)
	r.DELETE("/performance", h.Clear)
	r.DELETE("/performance/:id", h.Delete)
}

// List GET /performance
func (h *PerformanceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markers": h.markers.List()})
}

// Mark POST /performance
func (h *PerformanceHandler) Mark(c *gin.Context) {
	var req struct {
		Name     string   `json:"name"`
		Duration *float64 `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	marker, err := h.markers.Mark(req.Name, req.Duration)
	if err != nil {
		if errors.Is(err, markers.ErrEmptyName) {
			respondError(c, http.StatusBadRequest, "name is required")
			return
		}
		h.logger.Error("记录性能标记失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "marker": marker})
}

// Clear DELETE /performance
func (h *PerformanceHandler) Clear(c *gin.Context) {
	if err := h.markers.Clear(); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete DELETE /performance/:id
func (h *PerformanceHandler) Delete(c *gin.Context) {
	if !h.markers.Delete(c.Param("id")) {
		respondError(c, http.StatusNotFound, "marker not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
