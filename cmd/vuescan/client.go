package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weisyn/vuescan/pkg/types"
)

// errorBody 服务端统一错误格式
type errorBody struct {
	Error string `json:"error"`
}

// MemoryStatus GET /api/memory-status 的响应
type MemoryStatus struct {
	IsTracking       bool   `json:"isTracking"`
	IntervalMs       int64  `json:"intervalMs"`
	Components       int    `json:"components"`
	PendingRenders   int    `json:"pendingRenders"`
	QueuedSettles    int    `json:"queuedSettles"`
	SystemTotalBytes uint64 `json:"systemTotalBytes"`
}

// APIClient vuescan HTTP API 客户端
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient 创建客户端
//
// server 形如 http://127.0.0.1:3333，客户端自动追加 /api 前缀。
func NewAPIClient(server string, timeout time.Duration) *APIClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(server, "/")
	if !strings.HasSuffix(baseURL, "/api") {
		baseURL += "/api"
	}

	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do 发送请求并解析 JSON 响应
func (c *APIClient) do(ctx context.Context, method, path string, params url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return fmt.Errorf("http %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Stats 获取全部组件统计
func (c *APIClient) Stats(ctx context.Context) (map[string]types.ComponentStats, error) {
	var stats map[string]types.ComponentStats
	if err := c.do(ctx, http.MethodGet, "/memory-stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ComponentStats 获取单个组件统计
func (c *APIClient) ComponentStats(ctx context.Context, component string) (types.ComponentStats, error) {
	var st types.ComponentStats
	err := c.do(ctx, http.MethodGet, "/memory-stats/"+url.PathEscape(component), nil, &st)
	return st, err
}

// StartTracking 开始内存采样，interval 为 0 时使用服务端配置
func (c *APIClient) StartTracking(ctx context.Context, interval time.Duration) error {
	var params url.Values
	if interval > 0 {
		params = url.Values{"interval_ms": []string{strconv.FormatInt(interval.Milliseconds(), 10)}}
	}
	return c.do(ctx, http.MethodPost, "/memory-start", params, nil)
}

// StopTracking 停止内存采样
func (c *APIClient) StopTracking(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/memory-stop", nil, nil)
}

// Clear 清空统计
func (c *APIClient) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/memory-clear", nil, nil)
}

// Status 获取采样状态
func (c *APIClient) Status(ctx context.Context) (MemoryStatus, error) {
	var st MemoryStatus
	err := c.do(ctx, http.MethodGet, "/memory-status", nil, &st)
	return st, err
}
