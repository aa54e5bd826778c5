package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weisyn/vuescan/pkg/types"
)

// ConfigPathEnv 配置文件路径环境变量
const ConfigPathEnv = "VUESCAN_CONFIG"

// ResolveConfigPath 确定配置文件路径
//  1. 显式传入的路径
//  2. 环境变量 VUESCAN_CONFIG
//  3. 空字符串（使用默认配置）
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(ConfigPathEnv)
}

// LoadAppConfig 从文件加载用户配置
//
// 按扩展名选择格式：.yaml / .yml 使用 YAML，其余按 JSON 解析。
// path 为空时返回空配置（全部使用默认值）。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	if path == "" {
		return &types.AppConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
	}

	return ParseAppConfig(data, filepath.Ext(path))
}

// ParseAppConfig 按扩展名解析配置内容
func ParseAppConfig(data []byte, ext string) (*types.AppConfig, error) {
	var appConfig types.AppConfig

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &appConfig); err != nil {
			return nil, fmt.Errorf("解析YAML配置失败: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &appConfig); err != nil {
			return nil, fmt.Errorf("解析JSON配置失败: %w", err)
		}
	}

	return &appConfig, nil
}
