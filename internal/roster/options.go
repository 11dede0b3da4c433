package roster

import (
	"sort"

	"health-dashboard/internal/models"
)

// FilterOptions 生成过滤下拉选项：去重、去空、升序
func FilterOptions(people []models.Person) models.FilterOptions {
	return models.FilterOptions{
		Departments:  uniqueSorted(people, func(p models.Person) string { return p.Department }),
		Positions:    uniqueSorted(people, func(p models.Person) string { return p.Position }),
		Affiliations: uniqueSorted(people, func(p models.Person) string { return p.Affiliation }),
	}
}

func uniqueSorted(people []models.Person, get func(models.Person) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range people {
		v := get(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
