package enrich

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"20060102_150405",
	"2006:01:02",
	"2006-01-02",
	"20060102",
}

// FormatDate 把常见 EXIF 时间串转换为 YYYY-MM-DD；无法识别时返回 false。
//
// 带时区或亚秒的 EXIF 值（"2023:10:15 14:30:22+02:00"）只取前 19 个字符。
func FormatDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	candidates := []string{s}
	if len(s) > 19 {
		candidates = append(candidates, s[:19])
	}
	for _, c := range candidates {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
	}
	return "", false
}
