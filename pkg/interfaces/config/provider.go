// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/vuescan/internal/config/api"
	logconfig "github.com/weisyn/vuescan/internal/config/log"
	scanconfig "github.com/weisyn/vuescan/internal/config/scan"
)

// Provider 配置提供者接口
type Provider interface {
	// GetScan 获取组件扫描配置
	GetScan() *scanconfig.ScanOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetAppName 获取应用名称
	GetAppName() string

	// GetEnvironment 获取运行环境（dev | test | prod）
	GetEnvironment() string
}
