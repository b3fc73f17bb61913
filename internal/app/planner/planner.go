// Package planner 做批次级对账：系列重新编号、清洗与冲突处理，得到每个文件的最终名字。
package planner

import (
	"sort"

	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/naming"
	"github.com/John-Robertt/nameback/internal/scan"
	"github.com/John-Robertt/nameback/internal/series"
)

var readDirNames = scan.DirNames

// Result 是一次对账的附加结果。
type Result struct {
	// DirErrors 是无法列出现有条目的目录；这些目录中的文件不会得到新名字。
	DirErrors map[string]error
	// Series 是识别出的系列（供报告与日志使用）。
	Series []series.Series
}

// Reconcile 为 analyses 填写 Proposed（原地修改；切片会按路径重新排序）。
//
// 约束：
// - 按路径字典序串行处理，这个顺序决定 _1、_2 等后缀的分配
// - 系列成员在新基础名下统一编号；成员自己没有提议时也采用系列基础名（未知类型除外）
// - 冲突集合预先登记目录内已有条目；文件可以保留自己当前的名字
// - 只读目录，不做任何写入
func Reconcile(analyses []domain.Analysis) Result {
	SortAnalyses(analyses)

	res := Result{DirErrors: map[string]error{}}

	paths := make([]string, 0, len(analyses))
	bases := make(map[string]string, len(analyses))
	unknown := map[string]bool{}
	for i := range analyses {
		a := &analyses[i]
		a.Proposed = ""
		paths = append(paths, a.Entry.AbsPath)
		if a.Entry.Category == domain.CategoryUnknown {
			unknown[a.Entry.AbsPath] = true
		}
		if a.Base != "" {
			bases[a.Entry.AbsPath] = naming.Sanitize(a.Base)
		}
	}

	res.Series = series.Detect(paths)
	for _, s := range res.Series {
		for p, nb := range s.Renumber(bases) {
			if unknown[p] {
				continue
			}
			bases[p] = naming.Sanitize(nb)
		}
	}

	r := naming.NewResolver()
	seeded := map[string]bool{}
	for i := range analyses {
		a := &analyses[i]
		dir := a.Entry.Dir()
		if !seeded[dir] {
			seeded[dir] = true
			names, err := readDirNames(dir)
			if err != nil {
				res.DirErrors[dir] = err
			} else {
				r.Seed(dir, names)
			}
		}
		if _, failed := res.DirErrors[dir]; failed {
			continue
		}
		base, ok := bases[a.Entry.AbsPath]
		if !ok {
			continue
		}
		a.Proposed = r.Claim(dir, a.Entry.AbsPath, base, a.Entry.Ext)
	}
	return res
}

// SortAnalyses 按绝对路径排序，保证对账与报告顺序稳定。
func SortAnalyses(analyses []domain.Analysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].Entry.AbsPath < analyses[j].Entry.AbsPath
	})
}
