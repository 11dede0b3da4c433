package roster

import (
	"health-dashboard/internal/models"
)

// Derive 计算派生字段，返回新的记录（切片和 map 都重新分配，不与入参共享）
func Derive(p models.Person) models.Person {
	out := p
	out.RequiredStations = append([]string(nil), p.RequiredStations...)
	out.Stations = make(map[string]bool, len(p.Stations))
	for k, v := range p.Stations {
		out.Stations[k] = v
	}
	out.UncompletedStations = []string{}

	if !p.IsRegistered {
		out.Status = models.StatusNotRegistered
		return out
	}

	for _, key := range out.RequiredStations {
		if !out.Stations[key] {
			out.UncompletedStations = append(out.UncompletedStations, key)
		}
	}
	if len(out.UncompletedStations) == 0 {
		out.Status = models.StatusComplete
	} else {
		out.Status = models.StatusIncomplete
	}
	return out
}

// DeriveAll 对整个名单执行 Derive，每次加载调用一次
func DeriveAll(people []models.Person) []models.Person {
	out := make([]models.Person, len(people))
	for i, p := range people {
		out[i] = Derive(p)
	}
	return out
}
