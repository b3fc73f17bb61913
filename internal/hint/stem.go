// Package hint 提供不读文件内容的命名线索：原文件名分析、目录上下文、长文本关键短语。
package hint

import (
	"regexp"
	"strings"
	"unicode"
)

var stemPrefixes = []string{
	"IMG_", "DSC_", "DSCN", "SCAN_", "Screenshot_", "Capture_",
	"VID_", "PXL_", "Screen_Shot_", "Photo_", "Video_",
	"Document_", "Copy_of_", "Draft_", "New_",
	"Untitled_", "image_", "video_", "file_",
}

var (
	datePreserveRe = regexp.MustCompile(`(19|20)\d{2}[-/](0[1-9]|1[0-2])[-/](0[1-9]|[12]\d|3[01])|(19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])`)
	decimalVerRe   = regexp.MustCompile(`^\d+(\.\d+)+$`)
	productIDRe    = regexp.MustCompile(`^(cs\d+|cc\d*|office\d+|win\d+|x\d{2})$`)
	versionRe      = regexp.MustCompile(`^(v\d+|final\d*|rev\d*|copy\d*|ver\d+)$`)
	x8664Re        = regexp.MustCompile(`(?i)x86[_-]64`)
)

var (
	platformWords = wordSet("windows", "win", "win32", "win64", "mac", "macos", "osx",
		"darwin", "linux", "ubuntu", "debian", "x86", "x64", "x86_64", "amd64", "arm64",
		"i386", "32bit", "64bit", "android", "ios")
	vendorWords = wordSet("adobe", "microsoft", "google", "apple", "oracle", "autodesk",
		"corel", "mozilla", "jetbrains")
	productIDWords = wordSet("pro", "ultimate", "premium", "enterprise", "professional",
		"standard", "home", "portable", "trial", "setup", "install", "installer",
		"office365")
	productNameWords = wordSet("photoshop", "illustrator", "indesign", "premiere",
		"acrobat", "lightroom", "aftereffects", "excel", "word", "powerpoint", "outlook",
		"chrome", "firefox", "safari", "edge", "office", "visio", "autocad", "vscode")
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// StemResult 是原文件名分析结果。
type StemResult struct {
	Text string
	// DatesOnly 表示 Text 仅由保留下来的日期组成（没有其它有意义的 token）。
	DatesOnly bool
}

// AnalyzeStem 从文件名主干中提取有意义的部分；无结果时返回 false。
//
// 规则：
// - 反复剥离常见前缀（IMG_、DSC_、Screenshot_、Copy_of_ 等，大小写不敏感）
// - 保留 YYYY-MM-DD / YYYY/MM/DD / YYYYMMDD 子串
// - 其余部分按 _ - . 空格 切分，丢弃日期、时间、版本、平台、厂商、产品型号、产品名、小数版本号
// - 剩余 token 以 _ 连接；剩余为空但保留过日期时返回日期
func AnalyzeStem(stem string) (StemResult, bool) {
	cleaned := stripPrefixes(stem)

	dates := datePreserveRe.FindAllString(cleaned, -1)
	cleaned = datePreserveRe.ReplaceAllString(cleaned, " ")
	cleaned = x8664Re.ReplaceAllString(cleaned, " x64 ")

	var kept []string
	for _, raw := range strings.FieldsFunc(cleaned, isStemSeparator) {
		tok := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
		})
		if tok == "" || classified(tok) {
			continue
		}
		for _, part := range strings.Split(tok, ".") {
			if meaningful(part) {
				kept = append(kept, part)
			}
		}
	}

	switch {
	case len(kept) >= 2:
		return StemResult{Text: strings.Join(kept, "_")}, true
	case len(kept) == 1 && len([]rune(kept[0])) >= 5:
		return StemResult{Text: kept[0]}, true
	case len(dates) > 0:
		return StemResult{Text: strings.Join(dates, "_"), DatesOnly: true}, true
	}
	return StemResult{}, false
}

func isStemSeparator(r rune) bool {
	switch r {
	case '_', '-', ' ', '(', ')', '[', ']':
		return true
	}
	return false
}

func stripPrefixes(name string) string {
	for {
		changed := false
		for _, p := range stemPrefixes {
			if len(name) >= len(p) && strings.EqualFold(name[:len(p)], p) {
				name = name[len(p):]
				changed = true
				break
			}
		}
		if !changed {
			return name
		}
	}
}

// classified 表示 token 是否属于需要丢弃的类别（含小数点的整体判断）。
func classified(tok string) bool {
	l := strings.ToLower(tok)
	if decimalVerRe.MatchString(l) {
		return true
	}
	if _, ok := platformWords[l]; ok {
		return true
	}
	if _, ok := vendorWords[l]; ok {
		return true
	}
	if _, ok := productIDWords[l]; ok {
		return true
	}
	if _, ok := productNameWords[l]; ok {
		return true
	}
	return productIDRe.MatchString(l) || versionRe.MatchString(l)
}

func meaningful(part string) bool {
	if len([]rune(part)) < 2 {
		return false
	}
	if classified(part) || isDateToken(part) || isTimeToken(part) {
		return false
	}
	for _, r := range part {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isDateToken(s string) bool {
	return allDigits(s) && (len(s) == 4 || len(s) == 6 || len(s) == 8)
}

func isTimeToken(s string) bool {
	if !allDigits(s) || (len(s) != 4 && len(s) != 6) {
		return false
	}
	hh := (s[0]-'0')*10 + (s[1] - '0')
	return hh < 24
}
