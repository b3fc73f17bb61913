package extract

import (
	"bufio"
	"context"
	"html"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// webReadLimit 足够覆盖 <head>。
const webReadLimit = 256 << 10

var titleSuffixes = []string{
	" - Google Search", " - Google", " - Wikipedia", " - YouTube",
	" | Facebook", " | Twitter", " | LinkedIn",
}

// Web 从 HTML 的 <title>（优先）或 meta description 生成名字。
type Web struct{}

func (Web) Name() string { return "web" }

func (Web) Extract(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	s, ok, err := HTMLTitle(f, "")
	return s, ok, err
}

// HTMLTitle 解析 HTML；contentType 为空时由 <meta charset> 或内容嗅探决定编码。
func HTMLTitle(r io.Reader, contentType string) (string, bool, error) {
	br := bufio.NewReader(io.LimitReader(r, webReadLimit))
	peek, _ := br.Peek(1024)
	enc, _, _ := charset.DetermineEncoding(peek, contentType)
	doc, err := goquery.NewDocumentFromReader(enc.NewDecoder().Reader(br))
	if err != nil {
		return "", false, err
	}

	raw := strings.TrimSpace(doc.Find("title").First().Text())
	if raw == "" {
		doc.Find("meta[name]").EachWithBreak(func(_ int, m *goquery.Selection) bool {
			if name, _ := m.Attr("name"); !strings.EqualFold(name, "description") {
				return true
			}
			v, _ := m.Attr("content")
			raw = strings.TrimSpace(v)
			return raw == ""
		})
	}
	if raw == "" {
		return "", false, nil
	}
	s := CleanHTMLTitle(raw)
	if s == "" {
		return "", false, nil
	}
	return s, true, nil
}

// CleanHTMLTitle 解码实体、去掉站点后缀与残留标签，再用 "_" 连接单词。
func CleanHTMLTitle(title string) string {
	s := html.UnescapeString(title)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	for _, suf := range titleSuffixes {
		if i := strings.Index(s, suf); i >= 0 {
			s = s[:i]
		}
	}
	s = stripTags(s)
	return wordsJoined(s, func(r rune) bool { return r == '-' || r == '_' })
}

func stripTags(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '<':
			in = true
		case r == '>' && in:
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
