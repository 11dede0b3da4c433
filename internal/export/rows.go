package export

import (
	"health-dashboard/internal/models"
	"health-dashboard/internal/roster"
)

// Row 一行导出数据，key 为表头
type Row map[string]string

// 全量报表固定表头
const (
	HeaderNo           = "No"
	HeaderHN           = "HN"
	HeaderID           = "รหัสพนักงาน"
	HeaderName         = "ชื่อ-สกุล"
	HeaderDate         = "วันที่"
	HeaderTime         = "เวลา"
	HeaderDepartment   = "แผนก"
	HeaderPosition     = "ตำแหน่ง"
	HeaderAffiliation  = "สังกัด"
	HeaderRegistration = "สถานะลงทะเบียน"
	HeaderStatus       = "สถานะการตรวจ"
	HeaderNote         = "หมายเหตุ"
	HeaderUncompleted  = "รายการที่ยังไม่ครบ"
)

// 登记状态与站点单元格取值
const (
	Registered    = "ลงทะเบียนแล้ว"
	NotRegistered = "ยังไม่ลงทะเบียน"

	StationChecked     = "Checked"
	StationUnchecked   = "Unchecked"
	StationNotRequired = "-"
)

var fullReportHeaders = []string{
	HeaderNo, HeaderHN, HeaderID, HeaderName, HeaderDate, HeaderTime,
	HeaderDepartment, HeaderPosition, HeaderAffiliation, HeaderRegistration, HeaderStatus, HeaderNote,
}

var fullReportWidths = []float64{8, 15, 15, 30, 12, 10, 25, 25, 25, 20, 15, 40}

const stationColumnWidth = 25

var followUpHeaders = []string{HeaderID, HeaderName, HeaderDepartment, HeaderUncompleted, HeaderNote}

var followUpWidths = []float64{15, 30, 25, 50, 50}

// FullReportHeaders 固定表头 + 每个活动站点一列（按站点顺序）
func FullReportHeaders(stations []models.Station) []string {
	headers := append([]string{}, fullReportHeaders...)
	for _, s := range stations {
		headers = append(headers, stationHeader(s))
	}
	return headers
}

// FullReportRows 每条记录一行
func FullReportRows(people []models.Person, stations []models.Station) []Row {
	rows := make([]Row, 0, len(people))
	for _, p := range people {
		registration := NotRegistered
		if p.IsRegistered {
			registration = Registered
		}
		row := Row{
			HeaderNo:           p.No,
			HeaderHN:           p.HN,
			HeaderID:           p.ID,
			HeaderName:         p.Name,
			HeaderDate:         roster.FormatDate(p.Date),
			HeaderTime:         p.Time,
			HeaderDepartment:   p.Department,
			HeaderPosition:     p.Position,
			HeaderAffiliation:  p.Affiliation,
			HeaderRegistration: registration,
			HeaderStatus:       p.Status.Label(),
			HeaderNote:         p.Note,
		}
		for _, s := range stations {
			switch {
			case !p.Requires(s.Key):
				row[stationHeader(s)] = StationNotRequired
			case p.Checked(s.Key):
				row[stationHeader(s)] = StationChecked
			default:
				row[stationHeader(s)] = StationUnchecked
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FollowUpRows 待跟进名单导出行
func FollowUpRows(items []models.FollowUpRow) []Row {
	rows := make([]Row, 0, len(items))
	for _, r := range items {
		rows = append(rows, Row{
			HeaderID:          r.ID,
			HeaderName:        r.Name,
			HeaderDepartment:  r.Department,
			HeaderUncompleted: r.Uncompleted,
			HeaderNote:        r.Note,
		})
	}
	return rows
}

func stationHeader(s models.Station) string {
	if s.Name == "" {
		return s.Key
	}
	return s.Name
}
