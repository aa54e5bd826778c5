package scan

import (
	"strings"
	"time"

	"github.com/weisyn/vuescan/pkg/types"
)

// ScanOptions 组件扫描配置选项
type ScanOptions struct {
	Enabled bool     `json:"enabled"` // 是否启用扫描
	Ignore  []string `json:"ignore"`  // 忽略的组件名称

	// === 内存采样 ===
	TrackMemory             bool          `json:"track_memory"`
	MemoryTrackingInterval  time.Duration `json:"memory_tracking_interval"`
	AutoStartMemoryTracking bool          `json:"auto_start_memory_tracking"`
	MaxSnapshots            int           `json:"max_snapshots"`
	HeapSource              string        `json:"heap_source"`

	// === 渲染统计 ===
	TrackRenderFrequency bool `json:"track_render_frequency"`
	TrackMountTime       bool `json:"track_mount_time"`
	SettleQueueEnabled   bool `json:"settle_queue_enabled"`

	// PendingRenderTTL 未结算渲染令牌的保留时长，0 表示不清理
	PendingRenderTTL time.Duration `json:"pending_render_ttl"`

	// === 生命周期快照与自定义事件 ===
	SnapshotOnLifecycle bool `json:"snapshot_on_lifecycle"`
	MaxEvents           int  `json:"max_events"`
}

// Config 扫描配置实现
type Config struct {
	options *ScanOptions
}

// New 创建扫描配置实现
func New(userConfig *types.UserScanConfig) *Config {
	defaultOptions := createDefaultScanOptions()

	if userConfig != nil {
		applyUserScanConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultScanOptions 创建默认扫描配置
func createDefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		Enabled:                 defaultEnabled,
		Ignore:                  []string{},
		TrackMemory:             defaultTrackMemory,
		MemoryTrackingInterval:  defaultMemoryTrackingInterval,
		AutoStartMemoryTracking: defaultAutoStartMemoryTracking,
		MaxSnapshots:            defaultMaxSnapshots,
		HeapSource:              defaultHeapSource,
		TrackRenderFrequency:    defaultTrackRenderFrequency,
		TrackMountTime:          defaultTrackMountTime,
		SettleQueueEnabled:      defaultSettleQueueEnabled,
		PendingRenderTTL:        defaultPendingRenderTTL,
		SnapshotOnLifecycle:     defaultSnapshotOnLifecycle,
		MaxEvents:               defaultMaxEvents,
	}
}

// applyUserScanConfig 应用用户配置覆盖默认值
// 指针为 nil 表示用户未设置，保持默认值
func applyUserScanConfig(options *ScanOptions, userConfig *types.UserScanConfig) {
	if userConfig.Enabled != nil {
		options.Enabled = *userConfig.Enabled
	}
	for _, name := range userConfig.Ignore {
		if name = strings.TrimSpace(name); name != "" {
			options.Ignore = append(options.Ignore, name)
		}
	}
	if userConfig.TrackMemory != nil {
		options.TrackMemory = *userConfig.TrackMemory
	}
	if userConfig.MemoryTrackingIntervalMs != nil && *userConfig.MemoryTrackingIntervalMs > 0 {
		options.MemoryTrackingInterval = time.Duration(*userConfig.MemoryTrackingIntervalMs) * time.Millisecond
	}
	if userConfig.AutoStartMemoryTracking != nil {
		options.AutoStartMemoryTracking = *userConfig.AutoStartMemoryTracking
	}
	if userConfig.MaxSnapshots != nil && *userConfig.MaxSnapshots >= 0 {
		options.MaxSnapshots = *userConfig.MaxSnapshots
	}
	if userConfig.HeapSource != nil {
		switch source := strings.ToLower(strings.TrimSpace(*userConfig.HeapSource)); source {
		case HeapSourceNone, HeapSourceRuntime, HeapSourceReported:
			options.HeapSource = source
		}
	}
	if userConfig.TrackRenderFrequency != nil {
		options.TrackRenderFrequency = *userConfig.TrackRenderFrequency
	}
	if userConfig.TrackMountTime != nil {
		options.TrackMountTime = *userConfig.TrackMountTime
	}
	if userConfig.SettleQueueEnabled != nil {
		options.SettleQueueEnabled = *userConfig.SettleQueueEnabled
	}
	if userConfig.PendingRenderTTLMs != nil && *userConfig.PendingRenderTTLMs >= 0 {
		options.PendingRenderTTL = time.Duration(*userConfig.PendingRenderTTLMs) * time.Millisecond
	}
	if userConfig.SnapshotOnLifecycle != nil {
		options.SnapshotOnLifecycle = *userConfig.SnapshotOnLifecycle
	}
	if userConfig.MaxEvents != nil && *userConfig.MaxEvents > 0 {
		options.MaxEvents = *userConfig.MaxEvents
	}
}

// GetOptions 获取完整的扫描配置选项
func (c *Config) GetOptions() *ScanOptions {
	return c.options
}
