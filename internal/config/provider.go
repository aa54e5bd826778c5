package config

import (
	"strings"

	"github.com/weisyn/vuescan/internal/config/api"
	"github.com/weisyn/vuescan/internal/config/log"
	"github.com/weisyn/vuescan/internal/config/scan"
	"github.com/weisyn/vuescan/pkg/interfaces/config"
	"github.com/weisyn/vuescan/pkg/types"
)

const defaultAppName = "Vue App"

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// GetScan 获取组件扫描配置
func (p *Provider) GetScan() *scan.ScanOptions {
	return scan.New(p.appConfig.Scan).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	options := log.New(p.appConfig.Log).GetOptions()

	// dev 环境未显式设置级别时使用 debug
	if p.appConfig.Log == nil || p.appConfig.Log.Level == nil {
		if p.GetEnvironment() == "dev" {
			options.Level = "debug"
		}
	}
	return options
}

// GetAppName 获取应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetEnvironment 获取运行环境，未配置或无效值时为 dev
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment != nil {
		switch env := strings.ToLower(strings.TrimSpace(*p.appConfig.Environment)); env {
		case "dev", "test", "prod":
			return env
		}
	}
	return "dev"
}
