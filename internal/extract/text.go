package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/nameback/internal/hint"
)

const (
	// textReadLimit 是文本类文件最多读取的字节数。
	textReadLimit = 64 << 10
	maxTextName   = 80
)

var genericHeadings = map[string]struct{}{
	"introduction": {}, "overview": {}, "table of contents": {}, "contents": {},
	"summary": {}, "conclusion": {}, "abstract": {}, "preface": {}, "foreword": {},
}

// 按优先级排列的结构化字段路径（JSON 与 YAML 共用）。
var titlePaths = [][]string{
	{"title"}, {"name"}, {"displayName"}, {"label"}, {"description"},
	{"metadata", "title"}, {"data", "title"}, {"data", "name"},
	{"config", "name"}, {"package", "name"}, {"project", "name"},
}

// Text 处理 txt/md/csv/json/yaml 等纯文本文件。
type Text struct{}

func (Text) Name() string { return "text" }

func (Text) Extract(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	content, err := readText(path)
	if err != nil {
		return "", false, err
	}
	s, ok := TextFromContent(content, strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))
	return s, ok, nil
}

// TextFromContent 按扩展名（小写、不含点）分派。
func TextFromContent(content, ext string) (string, bool) {
	switch ext {
	case "md", "markdown":
		return fromMarkdown(content)
	case "csv":
		return fromCSV(content)
	case "json":
		return fromJSON(content)
	case "yaml", "yml":
		return fromYAML(content)
	default:
		return fromPlain(content)
	}
}

// readText 读取文件前 textReadLimit 字节；非 UTF-8 内容按 GBK 解码尝试一次。
func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, textReadLimit))
	if err != nil {
		return "", err
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return string(b), nil
	}
	if dec, err := simplifiedchinese.GBK.NewDecoder().Bytes(b); err == nil && utf8.Valid(dec) {
		return string(dec), nil
	}
	return strings.ToValidUTF8(string(b), ""), nil
}

func lines(s string, max int) []string {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 4096), textReadLimit)
	var out []string
	for sc.Scan() && len(out) < max {
		out = append(out, sc.Text())
	}
	return out
}

func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.Trim(strings.TrimSpace(s), `"`), `'`))
}

func fromMarkdown(content string) (string, bool) {
	inFront := false
	for i, line := range lines(content, 100) {
		t := strings.TrimSpace(line)
		if i == 0 && t == "---" {
			inFront = true
			continue
		}
		if inFront {
			if t == "---" {
				inFront = false
				continue
			}
			if v, ok := strings.CutPrefix(t, "title:"); ok {
				if v = trimQuotes(v); runeLen(v) > 3 {
					return Truncate(v, maxTextName), true
				}
			}
			continue
		}
		if h, ok := strings.CutPrefix(t, "#"); ok {
			h = strings.TrimSpace(strings.TrimLeft(h, "#"))
			if _, generic := genericHeadings[strings.ToLower(h)]; generic {
				continue
			}
			if runeLen(h) > 3 {
				return Truncate(h, maxTextName), true
			}
		}
	}
	return fromPlain(content)
}

func fromCSV(content string) (string, bool) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return "", false
	}
	row, _ := r.Read()

	var cols []string
	for i, h := range header {
		h = trimQuotes(h)
		if h == "" {
			continue
		}
		lower := strings.ToLower(h)
		switch {
		case isSemanticColumn(lower):
			cols = append([]string{h}, cols...)
		case !isIDColumn(lower) && !isTimeColumn(lower) && len(cols) < 2:
			if i < len(row) {
				if _, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err != nil {
					cols = append(cols, h)
				}
			}
		}
		if len(cols) >= 2 {
			break
		}
	}
	if len(cols) == 0 {
		return "", false
	}
	name := CleanText(strings.Join(cols, "_"))
	if runeLen(name) <= 3 {
		return "", false
	}
	return Truncate(name, maxTextName), true
}

func isSemanticColumn(s string) bool {
	switch s {
	case "name", "title", "description", "subject", "label", "product", "item":
		return true
	}
	return false
}

func isIDColumn(s string) bool {
	return strings.Contains(s, "id") || s == "index" || strings.Contains(s, "key") || strings.Contains(s, "guid")
}

func isTimeColumn(s string) bool {
	for _, w := range []string{"date", "time", "created", "modified"} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func fromPlain(content string) (string, bool) {
	var (
		b     strings.Builder
		count int
	)
	for _, line := range lines(content, 100) {
		t := strings.TrimSpace(line)
		if t != "" {
			b.WriteString(t)
			b.WriteByte(' ')
			count++
		}
		if b.Len() > 500 {
			break
		}
	}
	if b.Len() <= 10 {
		return "", false
	}
	cleaned := CleanText(b.String())
	if runeLen(cleaned) > 150 && count > 3 {
		if phrases := hint.KeyPhrases(cleaned, 3); len(phrases) > 0 {
			return phrases[0], true
		}
	}
	return Truncate(cleaned, maxTextName), true
}

func fromJSON(content string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err == nil {
		if s, ok := lookupTitle(v); ok {
			return s, true
		}
	}
	return fromPlain(content)
}

func fromYAML(content string) (string, bool) {
	var v any
	if err := yaml.Unmarshal([]byte(content), &v); err == nil {
		if s, ok := lookupTitle(v); ok {
			return s, true
		}
	}
	for _, line := range lines(content, 50) {
		t := strings.TrimSpace(line)
		for _, p := range []string{"title:", "name:", "description:", "label:"} {
			if val, ok := strings.CutPrefix(t, p); ok {
				if c := CleanText(trimQuotes(val)); runeLen(c) > 3 {
					return Truncate(c, maxTextName), true
				}
			}
		}
	}
	return fromPlain(content)
}

func lookupTitle(v any) (string, bool) {
	for _, path := range titlePaths {
		s, ok := walk(v, path).(string)
		if !ok {
			continue
		}
		if c := CleanText(s); runeLen(c) > 3 {
			return Truncate(c, maxTextName), true
		}
	}
	return "", false
}

// walk 沿着 key 路径下钻；YAML 解码结果的 map 类型是 map[string]any。
func walk(v any, path []string) any {
	for _, k := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}
