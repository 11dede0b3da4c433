package drilldown

import (
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// Cache 当前打开的明细快照。值类型，Open/Close 返回新的 Cache，原值不变
type Cache struct {
	snapshot *Snapshot
}

// Open 用新快照替换当前快照
func (c Cache) Open(s Snapshot) Cache {
	return Cache{snapshot: &s}
}

// Close 关闭明细
func (c Cache) Close() Cache {
	return Cache{}
}

// Current 当前快照；未打开时返回 false
func (c Cache) Current() (Snapshot, bool) {
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// Search 在当前快照内搜索；未打开时返回 false
func (c Cache) Search(term string) (Snapshot, bool) {
	s, ok := c.Current()
	if !ok {
		return Snapshot{}, false
	}
	return Search(s, term), true
}

// Search 保留任一快照列的值包含 term 的记录（大小写无关）；term 为空返回全部记录
// 结果是新快照，入参不被修改
func Search(s Snapshot, term string) Snapshot {
	out := s
	out.Columns = append([]models.Column(nil), s.Columns...)
	if term == "" {
		out.Records = append([]models.Person{}, s.Records...)
		return out
	}

	keys := s.ColumnKeys()
	out.Records = []models.Person{}
	for _, p := range s.Records {
		if roster.MatchAnyField(p, keys, term) {
			out.Records = append(out.Records, p)
		}
	}
	return out
}
