package state

import (
	"health-dashboard/internal/drilldown"
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// State 看板状态快照。由 Reduce 生成，生成后不可修改（切片在快照间共享）
type State struct {
	// Version 每次状态迁移加一
	Version uint64

	Company  string
	People   []models.Person
	Stations []models.Station

	Criteria      roster.Criteria
	StationSearch string

	DrillDown drilldown.Cache
	Dashboard models.Dashboard
}

// Loaded 是否已有数据集
func (s *State) Loaded() bool {
	return s.Company != ""
}

// SearchDrillDown 在当前明细快照内搜索；未打开明细时返回 false
func (s *State) SearchDrillDown(term string) (drilldown.Snapshot, bool) {
	return s.DrillDown.Search(term)
}

// Action 状态迁移
type Action interface {
	isAction()
}

// DatasetLoaded 整体替换名单与站点列表，关闭已打开的明细
type DatasetLoaded struct {
	Company string
	Dataset *models.Dataset
}

// CriteriaChanged 替换过滤条件
type CriteriaChanged struct {
	Criteria roster.Criteria
}

// SearchTermChanged 只替换过滤条件中的搜索词，其余条件保留
type SearchTermChanged struct {
	Term string
}

// StationSearchChanged 替换站点名称搜索词
type StationSearchChanged struct {
	Term string
}

// DrillDownOpened 按当前名单和过滤条件生成明细快照
// Context.Criteria 被忽略，使用状态中的过滤条件
type DrillDownOpened struct {
	Kind    drilldown.Kind
	Context drilldown.Context
}

// DrillDownClosed 关闭明细
type DrillDownClosed struct{}

// Reset 回到初始状态
type Reset struct{}

func (DatasetLoaded) isAction()        {}
func (CriteriaChanged) isAction()      {}
func (SearchTermChanged) isAction()    {}
func (StationSearchChanged) isAction() {}
func (DrillDownOpened) isAction()      {}
func (DrillDownClosed) isAction()      {}
func (Reset) isAction()                {}
