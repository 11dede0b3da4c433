package aggregator

import (
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// ComputeStationCards 统计每个站点的必需人数与完成人数
// nameSearch 非空时只保留名称包含该关键字的站点（大小写无关）
func ComputeStationCards(records []models.Person, stations []models.Station, nameSearch string) []models.StationCard {
	cards := make([]models.StationCard, 0, len(stations))
	for _, s := range stations {
		if !roster.ContainsFold(s.Name, nameSearch) {
			continue
		}
		card := models.StationCard{Key: s.Key, Name: s.Name}
		for _, p := range records {
			if p.Requires(s.Key) {
				card.Total++
			}
			if p.Checked(s.Key) {
				card.Completed++
			}
		}
		cards = append(cards, card)
	}
	return cards
}
