package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/vuescan/pkg/types"
)

func quietConfig() *types.AppConfig {
	return &types.AppConfig{
		Log: &types.UserLogConfig{ToConsole: types.BoolPtr(false)},
		Scan: &types.UserScanConfig{
			AutoStartMemoryTracking: types.BoolPtr(false),
		},
		API: &types.UserAPIConfig{Port: types.IntPtr(0)},
	}
}

func TestResolveAppOptions(t *testing.T) {
	t.Run("显式配置优先", func(t *testing.T) {
		cfg := &types.AppConfig{AppName: types.StringPtr("demo")}
		opts := newOptions(WithAppConfig(cfg), WithConfigFile("/does/not/exist.json"))

		appOptions, err := resolveAppOptions(opts)
		require.NoError(t, err)
		assert.Same(t, cfg, appOptions.GetAppConfig())
	})

	t.Run("嵌入YAML配置", func(t *testing.T) {
		opts := newOptions(WithEmbeddedConfig([]byte("app_name: embedded\n"), ".yaml"))

		appOptions, err := resolveAppOptions(opts)
		require.NoError(t, err)
		require.NotNil(t, appOptions.GetAppConfig().AppName)
		assert.Equal(t, "embedded", *appOptions.GetAppConfig().AppName)
	})

	t.Run("配置文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vuescan.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"scan":{"ignore":["KeepAlive"]}}`), 0o600))

		appOptions, err := resolveAppOptions(newOptions(WithConfigFile(path)))
		require.NoError(t, err)
		assert.Equal(t, []string{"KeepAlive"}, appOptions.GetAppConfig().Scan.Ignore)
	})

	t.Run("配置文件不存在", func(t *testing.T) {
		_, err := resolveAppOptions(newOptions(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))))
		assert.Error(t, err)
	})

	t.Run("WithScan 覆盖扫描配置段", func(t *testing.T) {
		opts := newOptions(WithScan(&types.UserScanConfig{Enabled: types.BoolPtr(false)}))
		require.NotNil(t, opts.GetAppConfig().Scan)
		assert.False(t, *opts.GetAppConfig().Scan.Enabled)
	})
}

func TestStartWithoutAPI(t *testing.T) {
	application, err := Start(WithAppConfig(quietConfig()), WithoutAPI())
	require.NoError(t, err)

	engine := application.Engine()
	require.NotNil(t, engine)
	assert.False(t, engine.IsMemoryTracking())

	engine.NotifyMounted("Widget")
	assert.Equal(t, 1, engine.InstanceCount("Widget"))

	require.NoError(t, application.Stop())
	<-application.Done()

	// 重复停止是安全的
	assert.NoError(t, application.Stop())
}

func TestStartWithAPI(t *testing.T) {
	application, err := Start(WithAppConfig(quietConfig()))
	require.NoError(t, err)
	defer func() { _ = application.Stop() }()

	assert.NotNil(t, application.Engine())
}
