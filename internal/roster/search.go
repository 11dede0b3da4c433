package roster

import (
	"strings"

	"health-dashboard/internal/models"
)

// IndividualSearchMinLen 个人搜索最短关键字（字符数）
const IndividualSearchMinLen = 2

// IndividualSearchLimit 个人搜索默认返回条数
const IndividualSearchLimit = 5

var individualFields = []string{"name", "id", "hn"}

// SearchIndividuals 按姓名/工号/HN 搜索个人，关键字不足 2 个字符时返回空
// limit <= 0 时使用默认值
func SearchIndividuals(people []models.Person, term string, limit int) []models.Person {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < IndividualSearchMinLen {
		return []models.Person{}
	}
	if limit <= 0 {
		limit = IndividualSearchLimit
	}

	out := make([]models.Person, 0, limit)
	for _, p := range people {
		if MatchAnyField(p, individualFields, term) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// FindByID 按工号查找
func FindByID(people []models.Person, id string) (models.Person, bool) {
	for _, p := range people {
		if p.ID == id {
			return p, true
		}
	}
	return models.Person{}, false
}
