package roster

import (
	"health-dashboard/internal/models"
)

// StationCheck 个人详情中的单个站点
type StationCheck struct {
	Station models.Station `json:"station"`
	Checked bool           `json:"checked"`
}

// Detail 个人详情视图
type Detail struct {
	Person models.Person `json:"person"`
	// Date 显示用日期 DD/MM/YYYY
	Date     string         `json:"date"`
	Stations []StationCheck `json:"stations"`
}

// PersonDetail 按 requiredStations 顺序列出站点及勾选状态；不在活动站点列表中的 key 跳过
func PersonDetail(p models.Person, stations []models.Station) Detail {
	checks := make([]StationCheck, 0, len(p.RequiredStations))
	for _, key := range p.RequiredStations {
		s, ok := models.FindStation(stations, key)
		if !ok {
			continue
		}
		checks = append(checks, StationCheck{Station: s, Checked: p.Checked(key)})
	}
	return Detail{Person: p, Date: FormatDate(p.Date), Stations: checks}
}
