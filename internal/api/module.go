// Package api 汇总对外服务模块
package api

import (
	"github.com/weisyn/vuescan/internal/api/http"
	"go.uber.org/fx"
)

// Module 返回API模块选项
//
// HTTP 服务器同时承载 /ws/stats 推送与 /metrics 端点。
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
	)
}
