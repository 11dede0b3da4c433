package roster

import (
	"strings"

	"health-dashboard/internal/models"
)

// AllValues 下拉框“全部”哨兵值
const AllValues = "all"

// DefaultSearchFields 未指定搜索字段时使用
var DefaultSearchFields = []string{"name", "id", "hn", "department"}

// Criteria 过滤条件；零值表示不过滤
type Criteria struct {
	Department  string `json:"department,omitempty"`
	Position    string `json:"position,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`

	// SearchTerm 大小写无关子串，匹配 SearchFields 中任意一个字段
	SearchTerm   string   `json:"searchTerm,omitempty"`
	SearchFields []string `json:"searchFields,omitempty"`
}

// IsZero 没有任何约束
func (c Criteria) IsZero() bool {
	return unconstrained(c.Department) &&
		unconstrained(c.Position) &&
		unconstrained(c.Affiliation) &&
		c.SearchTerm == ""
}

// Match 单条记录是否满足全部条件（AND）
func (c Criteria) Match(p models.Person) bool {
	if !unconstrained(c.Department) && p.Department != c.Department {
		return false
	}
	if !unconstrained(c.Position) && p.Position != c.Position {
		return false
	}
	if !unconstrained(c.Affiliation) && p.Affiliation != c.Affiliation {
		return false
	}
	if c.SearchTerm != "" && !MatchAnyField(p, c.fields(), c.SearchTerm) {
		return false
	}
	return true
}

func (c Criteria) fields() []string {
	if len(c.SearchFields) == 0 {
		return DefaultSearchFields
	}
	return c.SearchFields
}

// Filter 稳定过滤，保持原相对顺序，总是返回新切片
func Filter(records []models.Person, c Criteria) []models.Person {
	out := make([]models.Person, 0, len(records))
	for _, p := range records {
		if c.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// MatchAnyField 任一字段包含 term（大小写无关）；未知字段视为不匹配
func MatchAnyField(p models.Person, fields []string, term string) bool {
	for _, f := range fields {
		v, ok := p.Field(f)
		if !ok {
			continue
		}
		if ContainsFold(v, term) {
			return true
		}
	}
	return false
}

// GroupValue 按分组字段取组名，空或纯空白归入 Unspecified
func GroupValue(p models.Person, key models.GroupKey) string {
	var v string
	switch key {
	case models.GroupByDepartment:
		v = p.Department
	case models.GroupByAffiliation:
		v = p.Affiliation
	}
	if strings.TrimSpace(v) == "" {
		return models.UnspecifiedGroup
	}
	return v
}

func unconstrained(v string) bool {
	return v == "" || v == AllValues
}
