package api

import "time"

// API服务默认配置值
const (
	// defaultHost 监听地址
	defaultHost = "127.0.0.1"

	// defaultPort 与 standalone 调试服务器保持一致
	defaultPort = 3333

	// defaultCORSAllowOrigin 浏览器插件与 devtools 面板来自任意源
	defaultCORSAllowOrigin = "*"

	// defaultEnableWebSocket 默认启用 /ws/stats 推送
	defaultEnableWebSocket = true

	// defaultEnableMetrics 默认启用 /metrics
	defaultEnableMetrics = true

	// defaultStreamInterval 推送间隔
	defaultStreamInterval = 2 * time.Second

	// defaultMarkerRetention 性能标记保留时长
	defaultMarkerRetention = 10 * time.Minute

	// defaultReadTimeout / defaultWriteTimeout HTTP读写超时
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second

	// defaultShutdownTimeout 优雅关闭等待时间
	defaultShutdownTimeout = 5 * time.Second
)
