// Package markers 提供带保留期的命名性能标记存储
//
// 标记以 JSON 形式保存在 BigCache 中，超过保留期的条目由 BigCache
// 清理窗口回收；读取时再按时间戳过滤一次，避免返回尚未回收的过期条目。
package markers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	infraClock "github.com/weisyn/vuescan/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/vuescan/pkg/types"
)

// ErrEmptyName 标记名称为空
var ErrEmptyName = errors.New("marker name is empty")

// Store 性能标记存储
type Store struct {
	cache     *bigcache.BigCache
	clock     infraClock.Clock
	logger    *zap.Logger
	retention time.Duration

	mutex  sync.RWMutex
	closed bool
}

// New 创建性能标记存储
func New(retention time.Duration, clock infraClock.Clock, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 10 * time.Minute
	}

	cleanWindow := retention / 2
	if cleanWindow < time.Second {
		cleanWindow = time.Second
	}

	cfg := bigcache.DefaultConfig(retention)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 256
	cfg.CleanWindow = cleanWindow
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{
		cache:     cache,
		clock:     clock,
		logger:    logger,
		retention: retention,
	}, nil
}

// Mark 记录一个性能标记
func (s *Store) Mark(name string, duration *float64) (types.PerformanceMarker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.PerformanceMarker{}, ErrEmptyName
	}

	marker := types.PerformanceMarker{
		ID:        uuid.New().String(),
		Name:      name,
		Timestamp: s.clock.UnixMilli(),
		Duration:  duration,
	}

	data, err := json.Marshal(marker)
	if err != nil {
		return types.PerformanceMarker{}, fmt.Errorf("序列化性能标记失败: %w", err)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return types.PerformanceMarker{}, errors.New("marker store closed")
	}
	if err := s.cache.Set(marker.ID, data); err != nil {
		return types.PerformanceMarker{}, fmt.Errorf("写入性能标记失败: %w", err)
	}

	s.logger.Debug("记录性能标记", zap.String("name", name), zap.String("id", marker.ID))
	return marker, nil
}

// Get 按ID读取性能标记
func (s *Store) Get(id string) (types.PerformanceMarker, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return types.PerformanceMarker{}, false
	}

	data, err := s.cache.Get(id)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			s.logger.Warn("读取性能标记失败", zap.String("id", id), zap.Error(err))
		}
		return types.PerformanceMarker{}, false
	}

	var marker types.PerformanceMarker
	if err := json.Unmarshal(data, &marker); err != nil || s.expired(marker) {
		return types.PerformanceMarker{}, false
	}
	return marker, true
}

// List 返回保留期内的全部标记，按时间戳升序
func (s *Store) List() []types.PerformanceMarker {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	markers := make([]types.PerformanceMarker, 0)
	if s.closed {
		return markers
	}

	it := s.cache.Iterator()
	for it.SetNext() {
		entry, err := it.Value()
		if err != nil {
			continue
		}
		var marker types.PerformanceMarker
		if err := json.Unmarshal(entry.Value(), &marker); err != nil {
			s.logger.Warn("解析性能标记失败", zap.String("key", entry.Key()), zap.Error(err))
			continue
		}
		if s.expired(marker) {
			continue
		}
		markers = append(markers, marker)
	}

	sort.Slice(markers, func(i, j int) bool {
		if markers[i].Timestamp == markers[j].Timestamp {
			return markers[i].ID < markers[j].ID
		}
		return markers[i].Timestamp < markers[j].Timestamp
	})
	return markers
}

// Delete 删除指定标记
func (s *Store) Delete(id string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return false
	}
	return s.cache.Delete(id) == nil
}

// Clear 删除全部标记
func (s *Store) Clear() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil
	}
	return s.cache.Reset()
}

// Len 返回缓存中的条目数（含尚未回收的过期条目）
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return 0
	}
	return s.cache.Len()
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.cache.Close()
}

func (s *Store) expired(marker types.PerformanceMarker) bool {
	return s.clock.UnixMilli()-marker.Timestamp > s.retention.Milliseconds()
}
