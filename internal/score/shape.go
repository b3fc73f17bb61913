package score

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	uuidRe       = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	hexRunRe     = regexp.MustCompile(`(?i)[0-9a-f]{32,}`)
	decimalVerRe = regexp.MustCompile(`^\d+(\.\d+)+$`)
	yearRe       = regexp.MustCompile(`^20(1\d|2\d|30)$`)
)

var (
	platformTokens = set("windows", "win32", "win64", "macos", "osx", "darwin",
		"linux", "ubuntu", "debian", "x86", "x64", "amd64", "arm64")
	vendorTokens    = set("adobe", "microsoft", "google", "apple", "oracle")
	installerTokens = set("setup", "install", "installer", "package", "release")
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// LooksLikeUUID 识别 8-4-4-4-12 形式或 32 位以上连续十六进制串。
func LooksLikeUUID(s string) bool {
	return uuidRe.MatchString(s) || hexRunRe.MatchString(s)
}

// InstallerIndicators 统计安装包文件名特征的命中种类数（每种最多计一次）。
func InstallerIndicators(s string) int {
	toks := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.')
	})
	var platform, version, vendor, year, keyword bool
	for _, t := range toks {
		t = strings.Trim(t, ".")
		if _, ok := platformTokens[t]; ok {
			platform = true
		}
		if _, ok := vendorTokens[t]; ok {
			vendor = true
		}
		if _, ok := installerTokens[t]; ok {
			keyword = true
		}
		if decimalVerRe.MatchString(t) {
			version = true
		}
		if yearRe.MatchString(t) {
			year = true
		}
	}
	n := 0
	for _, b := range []bool{platform, version, vendor, year, keyword} {
		if b {
			n++
		}
	}
	return n
}

// LooksLikeInstaller 表示至少命中 3 种安装包特征。
func LooksLikeInstaller(s string) bool { return InstallerIndicators(s) >= 3 }
