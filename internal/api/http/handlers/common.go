// Package handlers 提供 vuescan HTTP API 的请求处理器
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// respondError 以统一格式返回错误
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":     message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// componentRequest 携带组件标识的请求体
type componentRequest struct {
	Component string `json:"component"`
}
