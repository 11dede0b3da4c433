package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"health-dashboard/internal/config"
	"health-dashboard/internal/models"

	"go.uber.org/zap"
)

const defaultViewTTL = time.Hour

// CacheManager 看板视图缓存（Redis），供其他进程读取最近一次计算结果
type CacheManager struct {
	config *config.Config
	kv     KVStore
	logger *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(
	cfg *config.Config,
	kv KVStore,
	logger *zap.Logger,
) *CacheManager {
	return &CacheManager{
		config: cfg,
		kv:     kv,
		logger: logger,
	}
}

// DashboardKey 公司看板缓存 key
func DashboardKey(company string) string {
	return fmt.Sprintf("health-dashboard:company:%s:views", company)
}

// DrillDownKey 公司当前明细快照缓存 key
func DrillDownKey(company string) string {
	return fmt.Sprintf("health-dashboard:company:%s:drilldown", company)
}

func (c *CacheManager) ttl() time.Duration {
	if c.config == nil || c.config.Dashboard.ViewTTL <= 0 {
		return defaultViewTTL
	}
	return time.Duration(c.config.Dashboard.ViewTTL) * time.Second
}

// UpdateDashboardCache 写入看板视图
func (c *CacheManager) UpdateDashboardCache(ctx context.Context, dashboard *models.Dashboard) error {
	key := DashboardKey(dashboard.Company)

	jsonData, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	if err := c.kv.Set(ctx, key, string(jsonData), c.ttl()); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated dashboard cache",
		zap.String("company", dashboard.Company),
		zap.String("key", key),
	)
	return nil
}

// GetDashboard 读取看板视图；不存在返回 ErrCacheMiss
func (c *CacheManager) GetDashboard(ctx context.Context, company string) (*models.Dashboard, error) {
	raw, err := c.kv.Get(ctx, DashboardKey(company))
	if err != nil {
		return nil, err
	}

	var d models.Dashboard
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dashboard: %w", err)
	}
	return &d, nil
}

// UpdateDrillDownCache 写入当前明细快照；snapshot 为 nil 时删除
func (c *CacheManager) UpdateDrillDownCache(ctx context.Context, company string, snapshot *models.Snapshot) error {
	key := DrillDownKey(company)
	if snapshot == nil {
		if err := c.kv.Del(ctx, key); err != nil {
			return fmt.Errorf("failed to delete cache: %w", err)
		}
		return nil
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.kv.Set(ctx, key, string(jsonData), c.ttl()); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.logger.Debug("Updated drill-down cache",
		zap.String("company", company),
		zap.String("snapshot_id", snapshot.ID),
		zap.Int("records", len(snapshot.Records)),
	)
	return nil
}

// GetDrillDown 读取当前明细快照
func (c *CacheManager) GetDrillDown(ctx context.Context, company string) (*models.Snapshot, error) {
	raw, err := c.kv.Get(ctx, DrillDownKey(company))
	if err != nil {
		return nil, err
	}

	var s models.Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// IsCacheMiss 判断是否为缓存未命中
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
