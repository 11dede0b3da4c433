package roster

import "strings"

// FormatDate 将 "YYYY-MM-DD..." 格式化为 "DD/MM/YYYY"，无法识别时原样返回
func FormatDate(s string) string {
	if len(s) < 10 {
		return s
	}
	parts := strings.Split(s[:10], "-")
	if len(parts) == 3 && len(parts[0]) == 4 {
		return parts[2] + "/" + parts[1] + "/" + parts[0]
	}
	return s
}
