package drilldown

import "fmt"

// Kind 明细来源（点击了哪一个汇总数字）
type Kind int

const (
	OverviewTotal Kind = iota
	OverviewRegistered
	OverviewNotRegistered
	OverviewIncomplete
	GroupTotal
	GroupRegistered
	GroupNotRegistered
	StationCompleted
	StationPending
	FollowUpStation
)

var kindNames = [...]string{
	OverviewTotal:         "overview_total",
	OverviewRegistered:    "overview_registered",
	OverviewNotRegistered: "overview_not_registered",
	OverviewIncomplete:    "overview_incomplete",
	GroupTotal:            "group_total",
	GroupRegistered:       "group_registered",
	GroupNotRegistered:    "group_not_registered",
	StationCompleted:      "station_completed",
	StationPending:        "station_pending",
	FollowUpStation:       "followup_station",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind 解析 Kind 名称
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown drill-down kind %q", s)
}
