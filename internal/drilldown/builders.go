package drilldown

import (
	"fmt"

	"health-dashboard/internal/aggregator"
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"

	"github.com/google/uuid"
)

// Snapshot 明细快照
type Snapshot = models.Snapshot

// Context 点击时的上下文：当前过滤条件，以及分组/站点类明细需要的参数
type Context struct {
	Criteria   roster.Criteria
	GroupKey   models.GroupKey
	GroupName  string
	StationKey string
}

var (
	baseColumns = []models.Column{
		{Key: "id", Name: "Employee ID"},
		{Key: "name", Name: "Name"},
		{Key: "department", Name: "Department"},
	}
	groupColumns = []models.Column{
		{Key: "id", Name: "Employee ID"},
		{Key: "name", Name: "Name"},
		{Key: "position", Name: "Position"},
		{Key: "status", Name: "Checkup Status"},
	}
)

func withColumns(extra ...models.Column) []models.Column {
	cols := make([]models.Column, 0, len(baseColumns)+len(extra))
	cols = append(cols, baseColumns...)
	return append(cols, extra...)
}

// Build 按 kind 生成明细快照。分组字段不支持或站点不在当前站点列表时返回空快照
func Build(kind Kind, people []models.Person, stations []models.Station, ctx Context) Snapshot {
	filtered := roster.Filter(people, ctx.Criteria)

	switch kind {
	case OverviewTotal:
		return newSnapshot("All Employees with Checkup Data", filtered,
			withColumns(models.Column{Key: "status", Name: "Status"}))

	case OverviewRegistered:
		return newSnapshot("Registered Employees", where(filtered, isRegistered),
			withColumns(models.Column{Key: "date", Name: "Date"}, models.Column{Key: "time", Name: "Time"}))

	case OverviewNotRegistered:
		return newSnapshot("Unregistered Employees", where(filtered, notRegistered), withColumns())

	case OverviewIncomplete:
		records := where(filtered, isIncomplete)
		for i := range records {
			records[i].UncompletedStations = stationNames(records[i].UncompletedStations, stations)
		}
		return newSnapshot("Incomplete Checkups", records,
			withColumns(models.Column{Key: "uncompletedStations", Name: "Incomplete Items"}, models.Column{Key: "note", Name: "Note"}))

	case GroupTotal, GroupRegistered, GroupNotRegistered:
		return buildGroup(kind, filtered, ctx)

	case StationCompleted, StationPending:
		station, ok := models.FindStation(stations, ctx.StationKey)
		if !ok {
			return emptySnapshot(withColumns())
		}
		if kind == StationCompleted {
			return newSnapshot(station.Name+" - Checked", where(filtered, func(p models.Person) bool {
				return p.Checked(station.Key)
			}), withColumns())
		}
		return newSnapshot(station.Name+" - Unchecked", where(filtered, func(p models.Person) bool {
			return p.Requires(station.Key) && !p.Checked(station.Key)
		}), withColumns())

	case FollowUpStation:
		return buildFollowUpStation(filtered, stations, ctx.StationKey)

	default:
		return emptySnapshot(nil)
	}
}

func buildGroup(kind Kind, filtered []models.Person, ctx Context) Snapshot {
	if !ctx.GroupKey.Valid() {
		return emptySnapshot(groupColumns)
	}
	group := where(filtered, func(p models.Person) bool {
		return roster.GroupValue(p, ctx.GroupKey) == ctx.GroupName
	})

	switch kind {
	case GroupRegistered:
		return newSnapshot("Registered Employees in: "+ctx.GroupName, where(group, isRegistered), groupColumns)
	case GroupNotRegistered:
		return newSnapshot("Unregistered Employees in: "+ctx.GroupName, where(group, notRegistered), groupColumns)
	default:
		return newSnapshot("All Employees in: "+ctx.GroupName, group, groupColumns)
	}
}

// buildFollowUpStation 与待跟进名单同源：ExtractFollowUps 按顺序输出每个未完成人员一行
func buildFollowUpStation(filtered []models.Person, stations []models.Station, key string) Snapshot {
	columns := withColumns(models.Column{Key: "note", Name: "Note"})
	station, ok := models.FindStation(stations, key)
	if !ok {
		return emptySnapshot(columns)
	}

	incomplete := where(filtered, isIncomplete)
	rows := aggregator.ExtractFollowUps(incomplete, stations)

	records := []models.Person{}
	for i, row := range rows {
		if aggregator.MissesStation(row, station) {
			records = append(records, incomplete[i])
		}
	}
	return newSnapshot(fmt.Sprintf("Follow-Up for: %s", aggregator.FollowUpLabel(station)), records, columns)
}

func newSnapshot(title string, records []models.Person, columns []models.Column) Snapshot {
	return Snapshot{
		ID:      uuid.NewString(),
		Title:   title,
		Records: records,
		Columns: append([]models.Column(nil), columns...),
	}
}

func emptySnapshot(columns []models.Column) Snapshot {
	return newSnapshot("", []models.Person{}, columns)
}

func where(people []models.Person, keep func(models.Person) bool) []models.Person {
	out := []models.Person{}
	for _, p := range people {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func isRegistered(p models.Person) bool  { return p.IsRegistered }
func notRegistered(p models.Person) bool { return !p.IsRegistered }
func isIncomplete(p models.Person) bool  { return p.Status == models.StatusIncomplete }

func stationNames(keys []string, stations []models.Station) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k
		if s, ok := models.FindStation(stations, k); ok && s.Name != "" {
			out[i] = s.Name
		}
	}
	return out
}
