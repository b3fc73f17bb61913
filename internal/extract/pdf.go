package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/John-Robertt/nameback/internal/hint"
)

// maxPDFPages 限制文本提取的页数。
const maxPDFPages = 5

// PDF 提取 PDF 文本；没有文本层时把第 1 页栅格化后 OCR。
type PDF struct {
	OCR    *OCR
	Runner Runner
	Logger *slog.Logger
}

func (PDF) Name() string { return "pdf" }

func (p PDF) Extract(ctx context.Context, path string) (string, bool, error) {
	text, err := PDFText(ctx, path)
	if err == nil {
		if s, ok := NameFromPDFText(text); ok {
			return s, true, nil
		}
	} else if p.Logger != nil {
		p.Logger.Debug("pdf text extraction failed", "path", path, "err", err)
	}

	if p.OCR == nil {
		return "", false, err
	}
	return p.ocrFirstPage(ctx, path)
}

// PDFText 读取前 maxPDFPages 页的纯文本。
func PDFText(ctx context.Context, path string) (text string, err error) {
	// ledongthuc/pdf 遇到损坏的交叉引用表时可能 panic。
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf 解析失败：%v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	n := min(r.NumPage(), maxPDFPages)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var line strings.Builder
			for _, w := range row.Content {
				line.WriteString(w.S)
			}
			b.WriteString(line.String())
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// NameFromPDFText 从 PDF 文本里选名字：
// 1) 前 4 个非空行（长度 > 3）：首行为基础，把 ≤30 字符的后续行接上，总长不超过 80；达到 30 即停；结果 ≥10 字符即返回
// 2) 全文清洗后 > 150 字符：取关键短语第一名
// 3) 清洗后 > 10 字符：取前 80 字符
func NameFromPDFText(text string) (string, bool) {
	var first []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || runeLen(l) <= 3 {
			continue
		}
		first = append(first, CleanText(l))
		if len(first) == 4 {
			break
		}
	}
	if len(first) > 0 {
		combined := first[0]
		for _, l := range first[1:] {
			if runeLen(combined) >= 30 {
				break
			}
			if runeLen(l) > 30 {
				continue
			}
			next := combined + " " + l
			if runeLen(next) > 80 {
				break
			}
			combined = next
		}
		if runeLen(combined) >= 10 {
			return combined, true
		}
	}
	return nameFromText(text)
}

func nameFromText(text string) (string, bool) {
	cleaned := CleanText(text)
	if runeLen(cleaned) > 150 {
		if phrases := hint.KeyPhrases(cleaned, 3); len(phrases) > 0 {
			return phrases[0], true
		}
	}
	if runeLen(cleaned) > 10 {
		return FirstRunes(cleaned, 80), true
	}
	return "", false
}

// ocrFirstPage 用 pdftoppm 把第 1 页渲染为 PNG 后 OCR。
func (p PDF) ocrFirstPage(ctx context.Context, path string) (string, bool, error) {
	r := runnerOr(p.Runner)
	if _, err := r.LookPath("pdftoppm"); err != nil {
		return "", false, err
	}
	dir, err := os.MkdirTemp(p.OCR.TmpDir, "nameback-pdf-")
	if err != nil {
		return "", false, err
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if _, err := r.Run(ctx, "pdftoppm", "-png", "-f", "1", "-l", "1", "-singlefile", path, prefix); err != nil {
		return "", false, err
	}
	img := prefix + ".png"
	if _, err := os.Stat(img); err != nil {
		return "", false, fmt.Errorf("pdftoppm 未生成图片：%w", err)
	}

	text, ok, err := p.OCR.RecognizeFull(ctx, img)
	if !ok {
		return "", false, err
	}
	s, ok := nameFromText(text)
	return s, ok, nil
}
