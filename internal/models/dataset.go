package models

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord 数据集不满足入口校验
var ErrInvalidRecord = errors.New("invalid record")

// Dataset 一次加载的完整数据（整体替换，不做增量修改）
type Dataset struct {
	Company        string    `json:"company"`
	People         []Person  `json:"processedData"`
	ActiveStations []Station `json:"activeStations"`
}

// Validate 入口校验：缺少 id/name 的记录、重复或空的站点 key 直接拒绝
// 核心计算不再重复校验
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.ActiveStations))
	for i, s := range d.ActiveStations {
		if s.Key == "" {
			return fmt.Errorf("%w: station at index %d has empty key", ErrInvalidRecord, i)
		}
		if _, ok := seen[s.Key]; ok {
			return fmt.Errorf("%w: duplicate station key %q", ErrInvalidRecord, s.Key)
		}
		seen[s.Key] = struct{}{}
	}

	for i, p := range d.People {
		if p.ID == "" {
			return fmt.Errorf("%w: record at index %d has empty id", ErrInvalidRecord, i)
		}
		if p.Name == "" {
			return fmt.Errorf("%w: record %s has empty name", ErrInvalidRecord, p.ID)
		}
	}
	return nil
}
