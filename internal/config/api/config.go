package api

import (
	"fmt"
	"time"

	"github.com/weisyn/vuescan/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	Host string `json:"host"` // 监听地址
	Port int    `json:"port"` // 监听端口

	CORSAllowOrigin string `json:"cors_allow_origin"` // CORS 允许源

	EnableWebSocket bool          `json:"enable_websocket"` // 是否启用 /ws/stats
	EnableMetrics   bool          `json:"enable_metrics"`   // 是否启用 /metrics
	StreamInterval  time.Duration `json:"stream_interval"`  // 推送间隔

	MarkerRetention time.Duration `json:"marker_retention"` // 性能标记保留时长

	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Addr 返回监听地址 host:port
func (o *APIOptions) Addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	defaultOptions := createDefaultAPIOptions()

	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultAPIOptions 创建默认API配置
func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		Host:            defaultHost,
		Port:            defaultPort,
		CORSAllowOrigin: defaultCORSAllowOrigin,
		EnableWebSocket: defaultEnableWebSocket,
		EnableMetrics:   defaultEnableMetrics,
		StreamInterval:  defaultStreamInterval,
		MarkerRetention: defaultMarkerRetention,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
// 使用指针类型来准确区分"未设置"和"设置为零值"
func convertAndMergeUserConfig(defaultOpts *APIOptions, userConfig *types.UserAPIConfig) {
	if userConfig.Host != nil && *userConfig.Host != "" {
		defaultOpts.Host = *userConfig.Host
	}
	if userConfig.Port != nil {
		// 0 表示由系统分配端口
		defaultOpts.Port = *userConfig.Port
	}
	if userConfig.CORSAllowOrigin != nil {
		defaultOpts.CORSAllowOrigin = *userConfig.CORSAllowOrigin
	}
	if userConfig.EnableWebSocket != nil {
		defaultOpts.EnableWebSocket = *userConfig.EnableWebSocket
	}
	if userConfig.EnableMetrics != nil {
		defaultOpts.EnableMetrics = *userConfig.EnableMetrics
	}
	if userConfig.StreamIntervalMs != nil && *userConfig.StreamIntervalMs > 0 {
		defaultOpts.StreamInterval = time.Duration(*userConfig.StreamIntervalMs) * time.Millisecond
	}
	if userConfig.MarkerRetentionSeconds != nil && *userConfig.MarkerRetentionSeconds > 0 {
		defaultOpts.MarkerRetention = time.Duration(*userConfig.MarkerRetentionSeconds) * time.Second
	}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
