package aggregator

import (
	"sort"

	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// ComputeOverview 概览计数
func ComputeOverview(records []models.Person) models.Overview {
	o := models.Overview{Total: len(records)}
	for _, p := range records {
		if p.IsRegistered {
			o.Registered++
		}
		if p.Status == models.StatusIncomplete {
			o.Incomplete++
		}
	}
	o.NotRegistered = o.Total - o.Registered
	return o
}

// ComputeGroupSummary 按部门或所属单位分组统计，组名升序（区分大小写）
// 不支持的分组字段返回空结果
func ComputeGroupSummary(records []models.Person, key models.GroupKey) []models.GroupSummaryRow {
	if !key.Valid() {
		return []models.GroupSummaryRow{}
	}

	stats := make(map[string]*models.GroupSummaryRow)
	for _, p := range records {
		name := roster.GroupValue(p, key)
		row, ok := stats[name]
		if !ok {
			row = &models.GroupSummaryRow{GroupName: name}
			stats[name] = row
		}
		row.Total++
		if p.IsRegistered {
			row.Registered++
		}
	}

	rows := make([]models.GroupSummaryRow, 0, len(stats))
	for _, row := range stats {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].GroupName < rows[j].GroupName
	})
	return rows
}
