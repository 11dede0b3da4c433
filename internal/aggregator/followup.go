package aggregator

import (
	"sort"
	"strings"

	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// ExtractFollowUps 提取体检未完成人员
// uncompleted 使用 FollowUpLabel（按 requiredStations 顺序）拼接，未知 key 保留原 key
func ExtractFollowUps(records []models.Person, stations []models.Station) []models.FollowUpRow {
	labels := make(map[string]string, len(stations))
	for _, s := range stations {
		labels[s.Key] = FollowUpLabel(s)
	}

	rows := []models.FollowUpRow{}
	for _, p := range records {
		if p.Status != models.StatusIncomplete {
			continue
		}
		missing := make([]string, 0, len(p.UncompletedStations))
		for _, key := range p.UncompletedStations {
			if label, ok := labels[key]; ok {
				missing = append(missing, label)
			} else {
				missing = append(missing, key)
			}
		}
		rows = append(rows, models.FollowUpRow{
			ID:          p.ID,
			Name:        p.Name,
			Department:  p.Department,
			Uncompleted: strings.Join(missing, models.UncompletedDelimiter),
			Note:        p.Note,
		})
	}
	return rows
}

// StationFollowUpCounts 每个站点待跟进人数：去掉 0，按人数降序，人数相同保持站点配置顺序
func StationFollowUpCounts(rows []models.FollowUpRow, stations []models.Station) []models.StationFollowUpCount {
	counts := make([]models.StationFollowUpCount, 0, len(stations))
	for _, s := range stations {
		n := 0
		for _, r := range rows {
			if MissesStation(r, s) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		counts = append(counts, models.StationFollowUpCount{Key: s.Key, Name: s.Name, Count: n})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// FollowUpLabel 站点在待跟进名单中的显示名，无名称时使用 key
func FollowUpLabel(s models.Station) string {
	if s.Name == "" {
		return s.Key
	}
	return s.Name
}

// MissesStation 待跟进行是否缺少该站点（按 FollowUpLabel 子串匹配）
func MissesStation(r models.FollowUpRow, s models.Station) bool {
	label := FollowUpLabel(s)
	return label != "" && strings.Contains(r.Uncompleted, label)
}

// FilterFollowUps 按姓名/工号/部门搜索待跟进名单
func FilterFollowUps(rows []models.FollowUpRow, term string) []models.FollowUpRow {
	out := make([]models.FollowUpRow, 0, len(rows))
	for _, r := range rows {
		if term == "" || matchFollowUp(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func matchFollowUp(r models.FollowUpRow, term string) bool {
	return roster.ContainsFold(r.Name, term) ||
		roster.ContainsFold(r.ID, term) ||
		roster.ContainsFold(r.Department, term)
}
