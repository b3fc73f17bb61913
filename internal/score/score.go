// Package score 给候选名打分并选出最佳候选。
//
// 约束：
// - Score 是 (text, source) 的纯函数
// - 惩罚项按乘法叠加
package score

import (
	"strings"
	"unicode"

	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/quality"
)

var sourceWeights = map[domain.Source]float64{
	domain.SourceMetadata:         3.0,
	domain.SourceTextExtract:      2.5,
	domain.SourcePdfText:          2.0,
	domain.SourceDirectoryContext: 1.8,
	domain.SourceFilenameAnalysis: 1.5,
	domain.SourceOcrImage:         1.5,
	domain.SourceOcrVideo:         1.2,
	domain.SourceFallback:         0.5,
}

// SourceWeight 返回来源的基础分；未知来源按 Fallback 处理。
func SourceWeight(src domain.Source) float64 {
	if w, ok := sourceWeights[src]; ok {
		return w
	}
	return sourceWeights[domain.SourceFallback]
}

func lengthComponent(n int) float64 {
	switch {
	case n < 11:
		return 0.2
	case n < 20:
		return 0.6
	case n <= 60:
		return 1.0
	case n <= 100:
		return 0.7
	default:
		return 0.4
	}
}

// Score 计算候选文本在给定来源下的分数。
func Score(text string, src domain.Source) float64 {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return 0
	}

	s := lengthComponent(n) * 2
	s += SourceWeight(src)
	s += 0.5 * float64(min(len(strings.Fields(text)), 5))

	unique := make(map[rune]struct{}, n)
	alpha, digits := 0, 0
	for _, r := range runes {
		unique[r] = struct{}{}
		switch {
		case unicode.IsLetter(r):
			alpha++
		case unicode.IsDigit(r):
			digits++
		}
	}
	s += 1.5 * float64(len(unique)) / float64(n)

	if quality.IsDateOnly(text) {
		s *= 0.3
	}
	if quality.HasErrorWord(text) {
		s *= 0.2
	}
	if LooksLikeUUID(text) {
		s *= 0.3
	}
	if LooksLikeInstaller(text) {
		s *= 0.2
	}
	if alpha < 3 || float64(digits)/float64(n) > 0.7 {
		s *= 0.5
	}
	return s
}

// Rank 为每个候选填充分数（原地修改并返回同一切片）。
func Rank(cands []domain.Candidate) []domain.Candidate {
	for i := range cands {
		cands[i].Score = Score(cands[i].Text, cands[i].Source)
	}
	return cands
}

// Select 返回分数最高且达到阈值的候选；同分时取先出现者。无可选时返回 false。
func Select(cands []domain.Candidate) (domain.Candidate, bool) {
	best := -1
	for i, c := range cands {
		if c.Score < domain.ScoreAcceptable {
			continue
		}
		if best < 0 || c.Score > cands[best].Score {
			best = i
		}
	}
	if best < 0 {
		return domain.Candidate{}, false
	}
	return cands[best], true
}
