// Package quality 实现元数据字符串的"是否可用"判定。
package quality

import (
	"regexp"
	"strings"
	"unicode"
)

var errorWords = []string{
	"error", "exception", "warning", "failed", "cannot", "invalid",
	"undefined", "null", "errno", "traceback", "fatal", "critical",
}

// 长设备词按子串匹配；短词（hp 等）容易误伤，只按完整 token 匹配。
var (
	deviceSubstrings = []string{
		"canon", "printer", "scanner", "epson", "brother", "xerox",
		"kyocera", "ricoh", "lexmark", "fujitsu",
	}
	deviceTokens = map[string]struct{}{"hp": {}, "ipr": {}, "dell": {}}
)

var (
	placeholderSubstrings = []string{
		"untitled", "new document", "document1", "image1", "noname",
		"unnamed", "copy of", "draft",
	}
	placeholderTokens = map[string]struct{}{"temp": {}, "test": {}, "sample": {}}
)

var dateOnlyRe = regexp.MustCompile(`^(\d{4}([-_./: ]?\d{2}([-_./: ]?\d{2})?)?)$`)

// HasErrorWord 表示 s 中是否出现错误类词汇（大小写不敏感）。
func HasErrorWord(s string) bool {
	l := strings.ToLower(s)
	for _, w := range errorWords {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

// IsDateOnly 判断 s 是否只是 4/6/8 位数字日期（允许分隔符）。
func IsDateOnly(s string) bool {
	return dateOnlyRe.MatchString(strings.TrimSpace(s))
}

// Useful 是元数据字符串的质量判定。按顺序拒绝：
// - 空或少于 3 个字符
// - 错误词
// - 设备/打印机词
// - 占位词
// - 纯日期
// - 字母数字占比低于 1/3
// - 任一字符连续重复超过 3 次
func Useful(s string) bool {
	s = strings.TrimSpace(s)
	if len([]rune(s)) < 3 {
		return false
	}
	if HasErrorWord(s) {
		return false
	}
	l := strings.ToLower(s)
	toks := tokens(l)
	if containsAny(l, deviceSubstrings) || hasToken(toks, deviceTokens) {
		return false
	}
	if containsAny(l, placeholderSubstrings) || hasToken(toks, placeholderTokens) {
		return false
	}
	if IsDateOnly(s) {
		return false
	}

	total, alnum := 0, 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if alnum*3 < total {
		return false
	}
	return !hasRepeatRun(s, 3)
}

func containsAny(s string, subs []string) bool {
	for _, w := range subs {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasToken(toks []string, set map[string]struct{}) bool {
	for _, t := range toks {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// hasRepeatRun 表示是否存在同一字符连续出现超过 max 次。
func hasRepeatRun(s string, max int) bool {
	var prev rune
	run := 0
	for i, r := range []rune(s) {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run > max {
			return true
		}
		prev = r
	}
	return false
}
