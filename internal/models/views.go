package models

import "encoding/json"

// UnspecifiedGroup 分组字段为空时的组名
const UnspecifiedGroup = "Unspecified"

// GroupKey 汇总分组字段
type GroupKey string

const (
	GroupByDepartment  GroupKey = "department"
	GroupByAffiliation GroupKey = "affiliation"
)

// Valid 是否为支持的分组字段
func (k GroupKey) Valid() bool {
	return k == GroupByDepartment || k == GroupByAffiliation
}

// Overview 概览计数
type Overview struct {
	Total         int `json:"total"`
	Registered    int `json:"registered"`
	NotRegistered int `json:"notRegistered"`
	Incomplete    int `json:"incomplete"`
}

// GroupSummaryRow 分组汇总行；未登记人数由 Total - Registered 推导，不单独存储
type GroupSummaryRow struct {
	GroupName  string `json:"groupName"`
	Total      int    `json:"total"`
	Registered int    `json:"registered"`
}

// NotRegistered 未登记人数
func (r GroupSummaryRow) NotRegistered() int {
	return r.Total - r.Registered
}

// Percentage 登记率（百分比），Total 为 0 时返回 0
func (r GroupSummaryRow) Percentage() float64 {
	return percent(r.Registered, r.Total)
}

// MarshalJSON 输出时带上推导字段
func (r GroupSummaryRow) MarshalJSON() ([]byte, error) {
	type row GroupSummaryRow
	return json.Marshal(struct {
		row
		NotRegistered int     `json:"notRegistered"`
		Percentage    float64 `json:"percentage"`
	}{row(r), r.NotRegistered(), r.Percentage()})
}

// StationCard 站点完成情况
// Completed 可能大于 Total（勾选了非必需站点的数据），调用方不能假设 Completed <= Total
type StationCard struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Pending 未完成数量（数据不一致时可能为负）
func (c StationCard) Pending() int {
	return c.Total - c.Completed
}

// Percentage 完成率，分母为 Total；Total 为 0 时返回 0
func (c StationCard) Percentage() float64 {
	return percent(c.Completed, c.Total)
}

// FollowUpRow 待跟进名单行
type FollowUpRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Uncompleted string `json:"uncompleted"`
	Note        string `json:"note"`
}

// StationFollowUpCount 站点待跟进人数
type StationFollowUpCount struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Column 明细表列
type Column struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// FilterOptions 过滤下拉选项（去重、排序、去空）
type FilterOptions struct {
	Departments  []string `json:"departments"`
	Positions    []string `json:"positions"`
	Affiliations []string `json:"affiliations"`
}

// Dashboard 一次计算得到的全部视图
type Dashboard struct {
	Company          string                 `json:"company"`
	Overview         Overview               `json:"overview"`
	Departments      []GroupSummaryRow      `json:"departments"`
	Affiliations     []GroupSummaryRow      `json:"affiliations"`
	Stations         []StationCard          `json:"stations"`
	FollowUps        []FollowUpRow          `json:"followUps"`
	FollowUpStations []StationFollowUpCount `json:"followUpStations"`
	FilterOptions    FilterOptions          `json:"filterOptions"`
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Snapshot 点击汇总数字时生成的明细快照（创建后不可修改）
type Snapshot struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Records []Person `json:"records"`
	Columns []Column `json:"columns"`
}

// ColumnKeys 列 key 列表（顺序与 Columns 一致）
func (s Snapshot) ColumnKeys() []string {
	keys := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		keys[i] = c.Key
	}
	return keys
}
