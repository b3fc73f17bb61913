package hint

import (
	"sort"
	"strings"
)

var stopWords = wordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at",
	"to", "for", "of", "with", "by", "from", "as", "is", "was",
	"are", "were", "been", "be", "have", "has", "had", "do", "does",
	"did", "will", "would", "could", "should", "may", "might", "must",
	"can", "this", "that", "these", "those", "i", "you", "he", "she",
	"it", "we", "they", "what", "which", "who", "when", "where", "why",
	"how",
)

// KeyPhrases 返回得分最高的 max 个短语。
//
// 打分：去停用词后生成 1/2/3-gram，第 idx 个 n-gram 得 1/(1+0.05*idx) + 0.3*词数，
// 同一短语多次出现时累加。同分按首次出现顺序排列。
func KeyPhrases(text string, max int) []string {
	var words []string
	for _, w := range strings.Fields(text) {
		if _, stop := stopWords[strings.ToLower(w)]; !stop {
			words = append(words, w)
		}
	}
	if len(words) == 0 || max <= 0 {
		return nil
	}

	type scored struct {
		phrase string
		score  float64
		first  int
	}
	byPhrase := map[string]*scored{}
	var order []*scored
	idx := 0
	add := func(p string, wc int) {
		s := 1.0/(1.0+float64(idx)*0.05) + float64(wc)*0.3
		if e, ok := byPhrase[p]; ok {
			e.score += s
		} else {
			e = &scored{phrase: p, score: s, first: idx}
			byPhrase[p] = e
			order = append(order, e)
		}
		idx++
	}
	for i := range words {
		add(words[i], 1)
		if i+1 < len(words) {
			add(words[i]+" "+words[i+1], 2)
		}
		if i+2 < len(words) {
			add(words[i]+" "+words[i+1]+" "+words[i+2], 3)
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].score > order[j].score })
	if len(order) > max {
		order = order[:max]
	}
	out := make([]string, 0, len(order))
	for _, e := range order {
		out = append(out, e.phrase)
	}
	return out
}
