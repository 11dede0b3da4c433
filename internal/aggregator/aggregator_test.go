package aggregator_test

import (
	"testing"

	agg "health-dashboard/internal/aggregator"
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStations() []models.Station {
	return []models.Station{
		{Key: "bloodTest", Name: "Blood Test"},
		{Key: "xray", Name: "X-Ray"},
		{Key: "vision", Name: "Vision"},
	}
}

func scenario() []models.Person {
	return roster.DeriveAll([]models.Person{
		{
			ID: "A", Name: "Anan", Department: "Production", Affiliation: "HQ", IsRegistered: true,
			RequiredStations: []string{"bloodTest", "xray"},
			Stations:         map[string]bool{"bloodTest": true, "xray": false},
		},
		{
			ID: "B", Name: "Busaba", Department: "QA", Affiliation: "HQ", IsRegistered: true,
			RequiredStations: []string{"xray"},
			Stations:         map[string]bool{"xray": true},
		},
		{ID: "C", Name: "Chai", Department: "", IsRegistered: false},
	})
}

func TestComputeOverview_Scenario(t *testing.T) {
	o := agg.ComputeOverview(scenario())
	assert.Equal(t, models.Overview{Total: 3, Registered: 2, NotRegistered: 1, Incomplete: 1}, o)
}

func TestComputeOverview_Empty(t *testing.T) {
	assert.Equal(t, models.Overview{}, agg.ComputeOverview(nil))
}

func TestComputeGroupSummary_Department(t *testing.T) {
	rows := agg.ComputeGroupSummary(scenario(), models.GroupByDepartment)
	require.Len(t, rows, 3)

	// 区分大小写升序："Production" < "QA" < "Unspecified"
	assert.Equal(t, "Production", rows[0].GroupName)
	assert.Equal(t, "QA", rows[1].GroupName)
	assert.Equal(t, models.UnspecifiedGroup, rows[2].GroupName)
	assert.Equal(t, 1, rows[2].Total)
	assert.Equal(t, 0, rows[2].Registered)
	assert.Equal(t, 1, rows[2].NotRegistered())
	assert.Equal(t, float64(0), rows[2].Percentage())
	assert.Equal(t, float64(100), rows[0].Percentage())

	total := 0
	for _, r := range rows {
		total += r.Total
	}
	assert.Equal(t, 3, total)
}

func TestComputeGroupSummary_Affiliation(t *testing.T) {
	rows := agg.ComputeGroupSummary(scenario(), models.GroupByAffiliation)
	require.Len(t, rows, 2)
	assert.Equal(t, models.GroupSummaryRow{GroupName: "HQ", Total: 2, Registered: 2}, rows[0])
	assert.Equal(t, models.UnspecifiedGroup, rows[1].GroupName)
}

func TestComputeGroupSummary_InvalidKey(t *testing.T) {
	rows := agg.ComputeGroupSummary(scenario(), models.GroupKey("position"))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestComputeStationCards(t *testing.T) {
	cards := agg.ComputeStationCards(scenario(), testStations(), "")
	require.Len(t, cards, 3)

	assert.Equal(t, models.StationCard{Key: "bloodTest", Name: "Blood Test", Completed: 1, Total: 1}, cards[0])
	assert.Equal(t, models.StationCard{Key: "xray", Name: "X-Ray", Completed: 1, Total: 2}, cards[1])
	assert.Equal(t, float64(50), cards[1].Percentage())
	assert.Equal(t, 1, cards[1].Pending())

	// 无人需要的站点：完成率为 0
	assert.Equal(t, 0, cards[2].Total)
	assert.Equal(t, float64(0), cards[2].Percentage())

	for _, c := range cards {
		assert.LessOrEqual(t, c.Completed, 3)
	}
}

func TestComputeStationCards_CompletedCanExceedTotal(t *testing.T) {
	people := roster.DeriveAll([]models.Person{
		{ID: "X", IsRegistered: true, Stations: map[string]bool{"vision": true}},
	})
	cards := agg.ComputeStationCards(people, testStations(), "vision")
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].Completed)
	assert.Equal(t, 0, cards[0].Total)
	assert.Equal(t, -1, cards[0].Pending())
}

func TestComputeStationCards_NameSearchIsCaseInsensitive(t *testing.T) {
	cards := agg.ComputeStationCards(scenario(), testStations(), "x-RAY")
	require.Len(t, cards, 1)
	assert.Equal(t, "xray", cards[0].Key)

	assert.Empty(t, agg.ComputeStationCards(scenario(), testStations(), "dental"))
}

func TestExtractFollowUps(t *testing.T) {
	rows := agg.ExtractFollowUps(scenario(), testStations())
	require.Len(t, rows, 1)
	assert.Equal(t, models.FollowUpRow{
		ID: "A", Name: "Anan", Department: "Production", Uncompleted: "X-Ray",
	}, rows[0])
}

func TestExtractFollowUps_OnlyIncompleteAndInRequiredOrder(t *testing.T) {
	people := roster.DeriveAll([]models.Person{
		{ID: "1", IsRegistered: true, RequiredStations: []string{"vision", "bloodTest"}},
		{ID: "2", IsRegistered: true, RequiredStations: []string{"xray"}, Stations: map[string]bool{"xray": true}},
		{ID: "3", IsRegistered: false, RequiredStations: []string{"xray"}},
		{ID: "4", IsRegistered: true, RequiredStations: []string{"unknown"}},
	})
	rows := agg.ExtractFollowUps(people, testStations())
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, "Vision, Blood Test", rows[0].Uncompleted)
	// 未配置的站点保留 key
	assert.Equal(t, "4", rows[1].ID)
	assert.Equal(t, "unknown", rows[1].Uncompleted)

	for _, p := range people {
		found := false
		for _, r := range rows {
			if r.ID == p.ID {
				found = true
			}
		}
		assert.Equal(t, p.Status == models.StatusIncomplete, found, p.ID)
	}
}

func TestStationFollowUpCounts_OrderAndTies(t *testing.T) {
	rows := []models.FollowUpRow{
		{ID: "1", Uncompleted: "X-Ray, Vision"},
		{ID: "2", Uncompleted: "Vision"},
		{ID: "3", Uncompleted: "Blood Test, X-Ray"},
		{ID: "4", Uncompleted: "Vision"},
	}
	counts := agg.StationFollowUpCounts(rows, testStations())
	require.Len(t, counts, 3)
	assert.Equal(t, models.StationFollowUpCount{Key: "vision", Name: "Vision", Count: 3}, counts[0])
	assert.Equal(t, "xray", counts[1].Key)
	assert.Equal(t, 2, counts[1].Count)
	assert.Equal(t, "bloodTest", counts[2].Key)

	// 数量相同保持站点配置顺序
	tie := agg.StationFollowUpCounts([]models.FollowUpRow{{Uncompleted: "Blood Test, X-Ray, Vision"}}, testStations())
	require.Len(t, tie, 3)
	assert.Equal(t, []string{"bloodTest", "xray", "vision"}, []string{tie[0].Key, tie[1].Key, tie[2].Key})
}

func TestStationFollowUpCounts_DropsZero(t *testing.T) {
	counts := agg.StationFollowUpCounts(nil, testStations())
	assert.NotNil(t, counts)
	assert.Empty(t, counts)
}

func TestStationFollowUpCounts_UnnamedStationUsesKey(t *testing.T) {
	stations := []models.Station{{Key: "xray", Name: "X-Ray"}, {Key: "ekg", Name: ""}}
	people := roster.DeriveAll([]models.Person{
		{ID: "1", IsRegistered: true, RequiredStations: []string{"xray", "ekg"}, Stations: map[string]bool{"ekg": true}},
		{ID: "2", IsRegistered: true, RequiredStations: []string{"xray", "ekg"}, Stations: map[string]bool{"ekg": true}},
		{ID: "3", IsRegistered: true, RequiredStations: []string{"ekg"}},
	})

	rows := agg.ExtractFollowUps(people, stations)
	require.Len(t, rows, 3)
	assert.Equal(t, "ekg", rows[2].Uncompleted)

	counts := agg.StationFollowUpCounts(rows, stations)
	require.Len(t, counts, 2)
	assert.Equal(t, models.StationFollowUpCount{Key: "xray", Name: "X-Ray", Count: 2}, counts[0])
	assert.Equal(t, models.StationFollowUpCount{Key: "ekg", Name: "", Count: 1}, counts[1])
}

func TestMissesStationAndFilterFollowUps(t *testing.T) {
	rows := []models.FollowUpRow{
		{ID: "E1", Name: "Anan", Department: "Production", Uncompleted: "X-Ray"},
		{ID: "E2", Name: "Busaba", Department: "QA", Uncompleted: "Vision, X-Ray"},
		{ID: "E3", Name: "Chai", Department: "QA", Uncompleted: "Vision"},
	}

	xray := models.Station{Key: "xray", Name: "X-Ray"}
	assert.True(t, agg.MissesStation(rows[0], xray))
	assert.True(t, agg.MissesStation(rows[1], xray))
	assert.False(t, agg.MissesStation(rows[2], xray))
	assert.False(t, agg.MissesStation(rows[0], models.Station{}))

	assert.Len(t, agg.FilterFollowUps(rows, ""), 3)
	assert.Len(t, agg.FilterFollowUps(rows, "qa"), 2)
	qa := agg.FilterFollowUps(rows, "e3")
	require.Len(t, qa, 1)
	assert.Equal(t, "Chai", qa[0].Name)
}

func TestBuildDashboard(t *testing.T) {
	people := scenario()

	d := agg.BuildDashboard("Acme", people, testStations(), roster.Criteria{}, "")
	assert.Equal(t, "Acme", d.Company)
	assert.Equal(t, 3, d.Overview.Total)
	assert.Len(t, d.Departments, 3)
	assert.Len(t, d.Affiliations, 2)
	assert.Len(t, d.Stations, 3)
	require.Len(t, d.FollowUps, 1)
	require.Len(t, d.FollowUpStations, 1)
	assert.Equal(t, "xray", d.FollowUpStations[0].Key)
	assert.Equal(t, []string{"Production", "QA"}, d.FilterOptions.Departments)
}

func TestBuildDashboard_CriteriaNarrowsViewsButNotOptions(t *testing.T) {
	people := scenario()

	d := agg.BuildDashboard("Acme", people, testStations(), roster.Criteria{Department: "QA"}, "blood")
	assert.Equal(t, models.Overview{Total: 1, Registered: 1}, d.Overview)
	require.Len(t, d.Departments, 1)
	assert.Equal(t, "QA", d.Departments[0].GroupName)
	require.Len(t, d.Stations, 1)
	assert.Equal(t, "bloodTest", d.Stations[0].Key)
	assert.Equal(t, 0, d.Stations[0].Total)
	assert.Empty(t, d.FollowUps)
	assert.Equal(t, []string{"Production", "QA"}, d.FilterOptions.Departments)
}
