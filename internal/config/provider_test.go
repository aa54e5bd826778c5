package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanconfig "github.com/weisyn/vuescan/internal/config/scan"
	"github.com/weisyn/vuescan/pkg/types"
)

// TestGetEnvironment 测试 GetEnvironment() 方法
func TestGetEnvironment(t *testing.T) {
	t.Run("显式配置 prod", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{Environment: types.StringPtr("prod")})
		assert.Equal(t, "prod", provider.GetEnvironment())
	})

	t.Run("未配置时默认为 dev", func(t *testing.T) {
		provider := NewProvider(nil)
		assert.Equal(t, "dev", provider.GetEnvironment())
	})

	t.Run("无效值默认为 dev", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{Environment: types.StringPtr("staging")})
		assert.Equal(t, "dev", provider.GetEnvironment())
	})
}

// TestGetScan 测试扫描配置的默认值与用户覆盖
func TestGetScan(t *testing.T) {
	t.Run("默认值", func(t *testing.T) {
		opts := NewProvider(nil).GetScan()
		assert.True(t, opts.Enabled)
		assert.True(t, opts.TrackMemory)
		assert.Equal(t, 5*time.Second, opts.MemoryTrackingInterval)
		assert.Equal(t, 0, opts.MaxSnapshots)
		assert.Equal(t, scanconfig.HeapSourceReported, opts.HeapSource)
		assert.Empty(t, opts.Ignore)
	})

	t.Run("零值也会被采用", func(t *testing.T) {
		opts := NewProvider(&types.AppConfig{
			Scan: &types.UserScanConfig{
				TrackMemory:             types.BoolPtr(false),
				AutoStartMemoryTracking: types.BoolPtr(false),
				MaxSnapshots:            types.IntPtr(0),
			},
		}).GetScan()
		assert.False(t, opts.TrackMemory)
		assert.False(t, opts.AutoStartMemoryTracking)
		assert.Equal(t, 0, opts.MaxSnapshots)
	})

	t.Run("间隔与忽略列表", func(t *testing.T) {
		opts := NewProvider(&types.AppConfig{
			Scan: &types.UserScanConfig{
				MemoryTrackingIntervalMs: types.IntPtr(2000),
				Ignore:                   []string{"RouterLink", "  ", "Transition"},
				HeapSource:               types.StringPtr("RUNTIME"),
			},
		}).GetScan()
		assert.Equal(t, 2*time.Second, opts.MemoryTrackingInterval)
		assert.Equal(t, []string{"RouterLink", "Transition"}, opts.Ignore)
		assert.Equal(t, scanconfig.HeapSourceRuntime, opts.HeapSource)
	})

	t.Run("无效堆来源保持默认", func(t *testing.T) {
		opts := NewProvider(&types.AppConfig{
			Scan: &types.UserScanConfig{HeapSource: types.StringPtr("performance.memory")},
		}).GetScan()
		assert.Equal(t, scanconfig.HeapSourceReported, opts.HeapSource)
	})

	t.Run("生命周期快照与令牌保留时长", func(t *testing.T) {
		defaults := NewProvider(nil).GetScan()
		assert.False(t, defaults.SnapshotOnLifecycle)
		assert.Equal(t, time.Minute, defaults.PendingRenderTTL)
		assert.Equal(t, 100, defaults.MaxEvents)

		opts := NewProvider(&types.AppConfig{
			Scan: &types.UserScanConfig{
				SnapshotOnLifecycle: types.BoolPtr(true),
				PendingRenderTTLMs:  types.IntPtr(0),
				MaxEvents:           types.IntPtr(5),
			},
		}).GetScan()
		assert.True(t, opts.SnapshotOnLifecycle)
		assert.Equal(t, time.Duration(0), opts.PendingRenderTTL)
		assert.Equal(t, 5, opts.MaxEvents)
	})
}

// TestGetAPI 测试API配置
func TestGetAPI(t *testing.T) {
	opts := NewProvider(&types.AppConfig{
		API: &types.UserAPIConfig{Port: types.IntPtr(4000), EnableWebSocket: types.BoolPtr(false)},
	}).GetAPI()
	assert.Equal(t, "127.0.0.1:4000", opts.Addr())
	assert.False(t, opts.EnableWebSocket)
	assert.True(t, opts.EnableMetrics)
	assert.Equal(t, "*", opts.CORSAllowOrigin)
}

// TestGetLog 测试日志配置
func TestGetLog(t *testing.T) {
	t.Run("dev 环境默认 debug", func(t *testing.T) {
		opts := NewProvider(&types.AppConfig{Environment: types.StringPtr("dev")}).GetLog()
		assert.Equal(t, "debug", opts.Level)
	})

	t.Run("显式级别优先", func(t *testing.T) {
		opts := NewProvider(&types.AppConfig{
			Environment: types.StringPtr("dev"),
			Log:         &types.UserLogConfig{Level: types.StringPtr("warn")},
		}).GetLog()
		assert.Equal(t, "warn", opts.Level)
	})

	t.Run("指定文件路径时关闭控制台", func(t *testing.T) {
		opts := NewProvider(&types.AppConfig{
			Log: &types.UserLogConfig{FilePath: types.StringPtr("/tmp/vuescan.log")},
		}).GetLog()
		assert.False(t, opts.ToConsole)
	})

	t.Run("未设置轮转参数时使用默认值", func(t *testing.T) {
		opts := NewProvider(nil).GetLog()
		assert.Equal(t, 100, opts.MaxSize)
		assert.Equal(t, 10, opts.MaxBackups)
		assert.Equal(t, 30, opts.MaxAge)
		assert.True(t, opts.Compress)
	})

	t.Run("YAML 轮转参数生效", func(t *testing.T) {
		cfg, err := ParseAppConfig([]byte("log:\n  max_size: 7\n  max_backups: 2\n  max_age: 1\n  compress: false\n"), ".yaml")
		require.NoError(t, err)
		opts := NewProvider(cfg).GetLog()
		assert.Equal(t, 7, opts.MaxSize)
		assert.Equal(t, 2, opts.MaxBackups)
		assert.Equal(t, 1, opts.MaxAge)
		assert.False(t, opts.Compress)
	})
}

// TestLoadAppConfig 测试 JSON / YAML 配置加载
func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"app_name":"demo","scan":{"max_snapshots":50}}`), 0o600))

		cfg, err := LoadAppConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg.Scan)
		assert.Equal(t, 50, *cfg.Scan.MaxSnapshots)
		assert.Equal(t, "demo", NewProvider(cfg).GetAppName())
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		content := "environment: prod\napi:\n  port: 9000\nscan:\n  ignore:\n    - KeepAlive\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadAppConfig(path)
		require.NoError(t, err)
		provider := NewProvider(cfg)
		assert.Equal(t, "prod", provider.GetEnvironment())
		assert.Equal(t, 9000, provider.GetAPI().Port)
		assert.Equal(t, []string{"KeepAlive"}, provider.GetScan().Ignore)
	})

	t.Run("空路径使用默认配置", func(t *testing.T) {
		cfg, err := LoadAppConfig("")
		require.NoError(t, err)
		assert.Equal(t, defaultAppName, NewProvider(cfg).GetAppName())
	})

	t.Run("文件不存在返回错误", func(t *testing.T) {
		_, err := LoadAppConfig(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("格式错误返回错误", func(t *testing.T) {
		_, err := ParseAppConfig([]byte("{not json"), ".json")
		assert.Error(t, err)
	})
}
