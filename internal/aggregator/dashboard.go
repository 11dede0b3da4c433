package aggregator

import (
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// BuildDashboard 从当前名单、活动站点和过滤条件整体重算所有视图
// 过滤条件作用于全部视图；stationSearch 只收窄站点卡片；过滤选项基于未过滤名单
func BuildDashboard(company string, people []models.Person, stations []models.Station, c roster.Criteria, stationSearch string) models.Dashboard {
	filtered := roster.Filter(people, c)
	followUps := ExtractFollowUps(filtered, stations)

	return models.Dashboard{
		Company:          company,
		Overview:         ComputeOverview(filtered),
		Departments:      ComputeGroupSummary(filtered, models.GroupByDepartment),
		Affiliations:     ComputeGroupSummary(filtered, models.GroupByAffiliation),
		Stations:         ComputeStationCards(filtered, stations, stationSearch),
		FollowUps:        followUps,
		FollowUpStations: StationFollowUpCounts(followUps, stations),
		FilterOptions:    roster.FilterOptions(people),
	}
}
