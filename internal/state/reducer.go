package state

import (
	"health-dashboard/internal/aggregator"
	"health-dashboard/internal/drilldown"
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// Reduce 纯函数：根据 action 生成新状态，不修改 s
// 名单、过滤条件或站点搜索变化时整体重算 Dashboard
func Reduce(s State, a Action) State {
	next := s
	next.Version = s.Version + 1

	switch act := a.(type) {
	case DatasetLoaded:
		ds := act.Dataset
		if ds == nil {
			ds = &models.Dataset{}
		}
		next.Company = act.Company
		next.People = roster.DeriveAll(ds.People)
		next.Stations = append([]models.Station{}, ds.ActiveStations...)
		next.DrillDown = drilldown.Cache{}
		next.Dashboard = recompute(next)

	case CriteriaChanged:
		next.Criteria = act.Criteria
		next.Dashboard = recompute(next)

	case SearchTermChanged:
		next.Criteria.SearchTerm = act.Term
		next.Dashboard = recompute(next)

	case StationSearchChanged:
		next.StationSearch = act.Term
		next.Dashboard = recompute(next)

	case DrillDownOpened:
		ctx := act.Context
		ctx.Criteria = next.Criteria
		next.DrillDown = next.DrillDown.Open(drilldown.Build(act.Kind, next.People, next.Stations, ctx))

	case DrillDownClosed:
		next.DrillDown = next.DrillDown.Close()

	case Reset:
		return State{Version: next.Version}

	default:
		return s
	}
	return next
}

func recompute(s State) models.Dashboard {
	return aggregator.BuildDashboard(s.Company, s.People, s.Stations, s.Criteria, s.StationSearch)
}
