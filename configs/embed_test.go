package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/vuescan/internal/config"
)

func TestPresets(t *testing.T) {
	t.Run("开发配置", func(t *testing.T) {
		data, err := Preset("dev")
		require.NoError(t, err)

		cfg, err := config.ParseAppConfig(data, PresetExt)
		require.NoError(t, err)
		provider := config.NewProvider(cfg)
		assert.Equal(t, "dev", provider.GetEnvironment())
		assert.True(t, provider.GetScan().AutoStartMemoryTracking)
		assert.Equal(t, []string{"RouterLink", "Transition"}, provider.GetScan().Ignore)
	})

	t.Run("生产配置", func(t *testing.T) {
		data, err := Preset("production")
		require.NoError(t, err)

		cfg, err := config.ParseAppConfig(data, PresetExt)
		require.NoError(t, err)
		provider := config.NewProvider(cfg)
		assert.Equal(t, "prod", provider.GetEnvironment())
		assert.Equal(t, 720, provider.GetScan().MaxSnapshots)
		assert.Equal(t, "0.0.0.0:3333", provider.GetAPI().Addr())
		assert.Equal(t, 50, provider.GetLog().MaxSize)
		assert.Equal(t, 14, provider.GetLog().MaxAge)
	})

	t.Run("未知名称", func(t *testing.T) {
		_, err := Preset("staging")
		assert.Error(t, err)
	})
}
