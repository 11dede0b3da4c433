package models

import (
	"strconv"
	"strings"
)

// Status 体检状态（由 roster.Derive 计算，加载后不再修改）
type Status string

const (
	StatusComplete      Status = "Complete"
	StatusIncomplete    Status = "Incomplete"
	StatusNotRegistered Status = "NotRegistered"
)

// UncompletedDelimiter 未完成站点拼接分隔符
const UncompletedDelimiter = ", "

// Label 导出/展示用的泰文标签
func (s Status) Label() string {
	switch s {
	case StatusComplete:
		return "ตรวจครบ"
	case StatusIncomplete:
		return "ตรวจไม่ครบ"
	case StatusNotRegistered:
		return "ยังไม่ลงทะเบียน"
	default:
		return string(s)
	}
}

// Person 员工体检记录（每人每次体检一条）
type Person struct {
	No           string `json:"no,omitempty"`
	HN           string `json:"hn"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	CheckOut     string `json:"checkOut,omitempty"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	Affiliation  string `json:"affiliation"`
	IsRegistered bool   `json:"isRegistered"`
	Note         string `json:"note"`

	// RequiredStations 适用于此人的站点 key，顺序与站点配置一致
	RequiredStations []string        `json:"requiredStations"`
	Stations         map[string]bool `json:"stations"`

	// 派生字段
	Status              Status   `json:"status"`
	UncompletedStations []string `json:"uncompletedStations"`
}

// Field 按列 key 取字符串值；未知 key 返回 ("", false)
func (p Person) Field(key string) (string, bool) {
	switch key {
	case "no":
		return p.No, true
	case "hn":
		return p.HN, true
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "date":
		return p.Date, true
	case "time":
		return p.Time, true
	case "checkOut":
		return p.CheckOut, true
	case "department":
		return p.Department, true
	case "position":
		return p.Position, true
	case "affiliation":
		return p.Affiliation, true
	case "note":
		return p.Note, true
	case "isRegistered":
		return strconv.FormatBool(p.IsRegistered), true
	case "status":
		return string(p.Status), true
	case "uncompletedStations":
		return strings.Join(p.UncompletedStations, UncompletedDelimiter), true
	default:
		return "", false
	}
}

// Requires 是否需要做该站点
func (p Person) Requires(stationKey string) bool {
	for _, k := range p.RequiredStations {
		if k == stationKey {
			return true
		}
	}
	return false
}

// Checked 站点是否已勾选（缺失视为未勾选）
func (p Person) Checked(stationKey string) bool {
	return p.Stations[stationKey]
}
