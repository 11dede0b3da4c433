package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"health-dashboard/internal/models"

	"github.com/xuri/excelize/v2"
)

// Sheet 单工作表导出内容
type Sheet struct {
	Name       string
	FileSuffix string
	Headers    []string
	Widths     []float64
	Rows       []Row
}

// FullReport 全量报表
func FullReport(people []models.Person, stations []models.Station) Sheet {
	widths := append([]float64{}, fullReportWidths...)
	for range stations {
		widths = append(widths, stationColumnWidth)
	}
	return Sheet{
		Name:       "Full Report",
		FileSuffix: "_Full_Report.xlsx",
		Headers:    FullReportHeaders(stations),
		Widths:     widths,
		Rows:       FullReportRows(people, stations),
	}
}

// FollowUpList 待跟进名单
func FollowUpList(items []models.FollowUpRow) Sheet {
	return Sheet{
		Name:       "Follow-Up List",
		FileSuffix: "_FollowUp_List.xlsx",
		Headers:    append([]string{}, followUpHeaders...),
		Widths:     append([]float64{}, followUpWidths...),
		Rows:       FollowUpRows(items),
	}
}

var unsafeFileChars = regexp.MustCompile(`(?i)[^a-z0-9]`)

// SafeFileName 公司名中非字母数字替换为 "_" 并转小写，再拼接后缀
func SafeFileName(company, suffix string) string {
	return strings.ToLower(unsafeFileChars.ReplaceAllString(company, "_")) + suffix
}

// WriteWorkbook 生成 xlsx 内容
func WriteWorkbook(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 需要文件保持打开，不能 defer Close

	index, err := f.NewSheet(sheet.Name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	if sheet.Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet.Name, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		if i < len(sheet.Widths) && sheet.Widths[i] > 0 {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert column number: %w", err)
			}
			if err := f.SetColWidth(sheet.Name, col, col, sheet.Widths[i]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for r, row := range sheet.Rows {
		values := make([]interface{}, len(sheet.Headers))
		for i, header := range sheet.Headers {
			values[i] = row[header]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// Save 写入 dir/<safe company><suffix>，返回文件路径
func Save(dir, company string, sheet Sheet) (string, error) {
	data, err := WriteWorkbook(sheet)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(dir, SafeFileName(company, sheet.FileSuffix))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
