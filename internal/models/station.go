package models

// Station 体检站点描述
// 活动站点列表随每次数据加载下发，数量和顺序都可能变化
type Station struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// FindStation 在站点列表中按 key 查找
func FindStation(stations []Station, key string) (Station, bool) {
	for _, s := range stations {
		if s.Key == key {
			return s, true
		}
	}
	return Station{}, false
}
