// Package naming 负责把候选名规范化为文件系统安全的名字，并在目录内分配不冲突的最终名。
package naming

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxGraphemes 是基础名保留的最大字素簇数量。
	MaxGraphemes = 200
	// EmptyName 是清洗后为空时的替代名。
	EmptyName = "renamed_file"
)

// Sanitize 把任意字符串规范化为安全的基础名（不含扩展名）。
//
// 约束：
// - 输入先做 NFC
// - / \ : * ? " < > | ( ) [ ] 与空白替换为 _；控制字符删除
// - 其它非字母、非组合符号、非数字且不是 - . _ 的字符替换为 _
// - 折叠连续 _，去掉首尾的 _ 与 .
// - 最多保留 MaxGraphemes 个字素簇；结果为空时返回 EmptyName
// - 幂等：Sanitize(Sanitize(x)) == Sanitize(x)
func Sanitize(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case unicode.IsControl(r):
			continue
		case keepRune(r):
			if r == '_' {
				if lastUnderscore {
					continue
				}
				lastUnderscore = true
			} else {
				lastUnderscore = false
			}
			b.WriteRune(r)
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	out := trimEdges(b.String())
	out = trimEdges(clampGraphemes(out, MaxGraphemes))
	if out == "" {
		return EmptyName
	}
	return out
}

// FileName 返回清洗后的基础名拼接原扩展名（扩展名原样保留）。
func FileName(base, ext string) string {
	return Sanitize(base) + ext
}

func keepRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) {
		return true
	}
	return r == '-' || r == '.' || r == '_'
}

func trimEdges(s string) string {
	return strings.Trim(s, "_.")
}

func clampGraphemes(s string, max int) string {
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return b.String()
}
