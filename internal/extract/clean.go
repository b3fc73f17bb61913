package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanText 去掉空行并把所有空白折叠为单个空格。
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate 把文本截到 max 个字符；截断点在后半段有空格时退回到该空格。
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)[:max]
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i > 0 && utf8.RuneCountInString(cut[:i]) > max/2 {
		return cut[:i]
	}
	return cut
}

// FirstRunes 返回前 n 个字符。
func FirstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// wordsJoined 只保留字母、数字与空白，再按空白切分后用 "_" 连接。
func wordsJoined(s string, keep func(rune) bool) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || (keep != nil && keep(r)) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
