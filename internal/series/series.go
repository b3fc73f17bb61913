// Package series 识别同一目录下的编号文件系列（IMG_001、IMG_002 ...），并在新基础名下统一重新编号。
package series

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Pattern 是系列编号的分隔形式。
type Pattern int

const (
	Underscore Pattern = iota
	Parentheses
	Hyphen
	Space
)

// MinMembers 是构成系列的最少成员数。
const MinMembers = 3

var patterns = []struct {
	p  Pattern
	re *regexp.Regexp
}{
	{Underscore, regexp.MustCompile(`^(.+?)_(\d+)$`)},
	{Parentheses, regexp.MustCompile(`^(.+?)\((\d+)\)$`)},
	{Hyphen, regexp.MustCompile(`^(.+?)-(\d+)$`)},
	{Space, regexp.MustCompile(`^(.+?)\s+(\d+)$`)},
}

func (p Pattern) String() string {
	switch p {
	case Underscore:
		return "underscore"
	case Parentheses:
		return "parentheses"
	case Hyphen:
		return "hyphen"
	case Space:
		return "space"
	default:
		return "unknown"
	}
}

// Format 按系列分隔形式拼接基础名与零填充序号。
func (p Pattern) Format(base string, index, width int) string {
	switch p {
	case Parentheses:
		return fmt.Sprintf("%s (%0*d)", base, width, index)
	case Hyphen:
		return fmt.Sprintf("%s-%0*d", base, width, index)
	case Space:
		return fmt.Sprintf("%s %0*d", base, width, index)
	default:
		return fmt.Sprintf("%s_%0*d", base, width, index)
	}
}

// Member 是系列中的一个文件。
type Member struct {
	Path  string
	Index int
}

// Series 是同一目录内共享 (base, pattern) 的文件组，成员按序号升序。
type Series struct {
	Dir     string
	Base    string
	Pattern Pattern
	Members []Member
}

// Width 返回序号零填充宽度：max(3, 最大序号的位数)。
func (s Series) Width() int {
	maxIdx := 0
	for _, m := range s.Members {
		maxIdx = max(maxIdx, m.Index)
	}
	return max(3, len(strconv.Itoa(maxIdx)))
}

// Detect 在给定文件路径中识别系列。
//
// 约束：
// - 只按原文件名主干匹配（不含扩展名）；每个文件按模式顺序归入第一个匹配的模式
// - 分组键为 (目录, 捕获的 base, 模式)；成员数不少于 MinMembers 才成为系列
// - 输出顺序稳定：按目录、base、模式排序
func Detect(paths []string) []Series {
	type key struct {
		dir  string
		base string
		p    Pattern
	}
	groups := map[key][]Member{}
	for _, path := range paths {
		stem := stemOf(path)
		for _, pt := range patterns {
			m := pt.re.FindStringSubmatch(stem)
			if m == nil {
				continue
			}
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				break
			}
			k := key{dir: filepath.Dir(path), base: m[1], p: pt.p}
			groups[k] = append(groups[k], Member{Path: path, Index: idx})
			break
		}
	}

	var out []Series
	for k, members := range groups {
		if len(members) < MinMembers {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].Index != members[j].Index {
				return members[i].Index < members[j].Index
			}
			return members[i].Path < members[j].Path
		})
		out = append(out, Series{Dir: k.dir, Base: k.base, Pattern: k.p, Members: members})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dir != out[j].Dir {
			return out[i].Dir < out[j].Dir
		}
		if out[i].Base != out[j].Base {
			return out[i].Base < out[j].Base
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// Renumber 计算系列成员的新名字（未清洗，不含扩展名）。
//
// bases 是各成员自己的基础名（已清洗；无提议的成员不在其中）。系列基础名取出现次数最多者，
// 同次数取序号最小成员的。没有任何成员有基础名时返回 nil，全体保持不变；
// 系列基础名与文件名中捕获的 base 相同时，成员保持各自当前的主干。
func (s Series) Renumber(bases map[string]string) map[string]string {
	counts := map[string]int{}
	firstAt := map[string]int{}
	for i, m := range s.Members {
		b, ok := bases[m.Path]
		if !ok || b == "" {
			continue
		}
		if _, seen := firstAt[b]; !seen {
			firstAt[b] = i
		}
		counts[b]++
	}
	if len(counts) == 0 {
		return nil
	}

	chosen := ""
	for b, c := range counts {
		if chosen == "" || c > counts[chosen] || (c == counts[chosen] && firstAt[b] < firstAt[chosen]) {
			chosen = b
		}
	}

	out := make(map[string]string, len(s.Members))
	if chosen == s.Base {
		// 成员已经以该基础名编号：保持现有主干，重复运行不再改名。
		for _, m := range s.Members {
			out[m.Path] = stemOf(m.Path)
		}
		return out
	}
	width := s.Width()
	for _, m := range s.Members {
		out[m.Path] = s.Pattern.Format(chosen, m.Index, width)
	}
	return out
}

func stemOf(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
