// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
//
// 🔧 零值陷阱处理说明：
// - nil: 表示用户未在配置文件中设置该字段，将使用系统默认值
// - &value: 表示用户明确设置了该值，即使是零值（如0、false、""）也会被采用
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty" yaml:"app_name,omitempty"` // 应用名称
	Version *string `json:"version,omitempty" yaml:"version,omitempty"`   // 应用版本

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty" yaml:"environment,omitempty"`

	// 组件扫描配置
	Scan *UserScanConfig `json:"scan,omitempty" yaml:"scan,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty" yaml:"api,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

// UserScanConfig 用户组件扫描配置
// 只包含配置文件中实际出现的字段
type UserScanConfig struct {
	Enabled *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"` // 是否启用扫描
	Ignore  []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`   // 忽略的组件名称

	TrackMemory              *bool `json:"track_memory,omitempty" yaml:"track_memory,omitempty"`                                 // 是否启用内存采样
	MemoryTrackingIntervalMs *int  `json:"memory_tracking_interval_ms,omitempty" yaml:"memory_tracking_interval_ms,omitempty"` // 采样间隔（毫秒）
	AutoStartMemoryTracking  *bool `json:"auto_start_memory_tracking,omitempty" yaml:"auto_start_memory_tracking,omitempty"`   // 启动时自动开始采样
	TrackRenderFrequency     *bool `json:"track_render_frequency,omitempty" yaml:"track_render_frequency,omitempty"`           // 是否统计渲染
	TrackMountTime           *bool `json:"track_mount_time,omitempty" yaml:"track_mount_time,omitempty"`                       // 是否记录挂载时间

	// MaxSnapshots 每个组件保留的快照上限，0 表示不限
	MaxSnapshots *int `json:"max_snapshots,omitempty" yaml:"max_snapshots,omitempty"`

	// HeapSource 堆内存读数来源：none | runtime | reported
	HeapSource *string `json:"heap_source,omitempty" yaml:"heap_source,omitempty"`

	// SettleQueueEnabled 是否通过 FIFO 队列延迟结算渲染
	SettleQueueEnabled *bool `json:"settle_queue_enabled,omitempty" yaml:"settle_queue_enabled,omitempty"`

	// PendingRenderTTLMs 未结算渲染令牌的保留时长（毫秒），0 表示不清理
	PendingRenderTTLMs *int `json:"pending_render_ttl_ms,omitempty" yaml:"pending_render_ttl_ms,omitempty"`

	// SnapshotOnLifecycle 挂载后与卸载时为该组件额外采样一次
	SnapshotOnLifecycle *bool `json:"snapshot_on_lifecycle,omitempty" yaml:"snapshot_on_lifecycle,omitempty"`

	// MaxEvents 每个组件保留的自定义事件上限
	MaxEvents *int `json:"max_events,omitempty" yaml:"max_events,omitempty"`
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	Host *string `json:"host,omitempty" yaml:"host,omitempty"` // 监听地址
	Port *int    `json:"port,omitempty" yaml:"port,omitempty"` // 监听端口

	CORSAllowOrigin *string `json:"cors_allow_origin,omitempty" yaml:"cors_allow_origin,omitempty"` // CORS 允许源

	EnableWebSocket  *bool `json:"enable_websocket,omitempty" yaml:"enable_websocket,omitempty"`     // 是否启用 /ws/stats
	EnableMetrics    *bool `json:"enable_metrics,omitempty" yaml:"enable_metrics,omitempty"`         // 是否启用 /metrics
	StreamIntervalMs *int  `json:"stream_interval_ms,omitempty" yaml:"stream_interval_ms,omitempty"` // 推送间隔（毫秒）

	MarkerRetentionSeconds *int `json:"marker_retention_seconds,omitempty" yaml:"marker_retention_seconds,omitempty"` // 性能标记保留时长
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level     *string `json:"level,omitempty" yaml:"level,omitempty"`           // 日志级别：debug, info, warn, error
	FilePath  *string `json:"file_path,omitempty" yaml:"file_path,omitempty"`   // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty" yaml:"to_console,omitempty"` // 是否输出到控制台

	// 日志轮转
	MaxSize    *int  `json:"max_size,omitempty" yaml:"max_size,omitempty"`       // 单个文件最大大小(MB)
	MaxBackups *int  `json:"max_backups,omitempty" yaml:"max_backups,omitempty"` // 最大备份文件数，0 表示全部保留
	MaxAge     *int  `json:"max_age,omitempty" yaml:"max_age,omitempty"`         // 最大保留天数，0 表示不按时间清理
	Compress   *bool `json:"compress,omitempty" yaml:"compress,omitempty"`       // 是否压缩历史日志
}

// BoolPtr 返回bool指针
func BoolPtr(v bool) *bool {
	return &v
}

// IntPtr 返回int指针
func IntPtr(v int) *int {
	return &v
}

// StringPtr 返回string指针
func StringPtr(v string) *string {
	return &v
}
