package roster

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContainsFold 大小写无关的子串匹配；空 term 总是匹配
// cases.Caser 有状态，不能跨 goroutine 共享，每次调用新建
func ContainsFold(s, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(cases.Fold().String(s), cases.Fold().String(term))
}
