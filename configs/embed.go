// Package configs 提供随二进制分发的预置配置
package configs

import (
	_ "embed"
	"fmt"
)

// 预置配置的文件扩展名，供解析器选择格式
const PresetExt = ".yaml"

//go:embed development.yaml
var developmentConfig []byte

//go:embed production.yaml
var productionConfig []byte

// GetDevelopmentConfig 获取开发环境配置
func GetDevelopmentConfig() []byte {
	return developmentConfig
}

// GetProductionConfig 获取生产环境配置
func GetProductionConfig() []byte {
	return productionConfig
}

// Preset 按名称获取预置配置：development | production
func Preset(name string) ([]byte, error) {
	switch name {
	case "development", "dev":
		return developmentConfig, nil
	case "production", "prod":
		return productionConfig, nil
	default:
		return nil, fmt.Errorf("未知的预置配置: %s", name)
	}
}
