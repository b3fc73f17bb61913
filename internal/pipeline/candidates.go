package pipeline

import (
	"context"

	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/extract"
	"github.com/John-Robertt/nameback/internal/hint"
	"github.com/John-Robertt/nameback/internal/quality"
)

// Candidates 按类别收集候选（尚未打分）。
//
// 约束：
// - 元数据字段先过质量过滤
// - 内容提取按"元数据缺失"门控，避免对已有好标题的文件做 OCR
// - 所有文件都追加文件名分析与目录上下文候选
func (a *Analyzer) Candidates(ctx context.Context, e domain.PathEntry, m domain.Metadata, stem hint.StemResult, hasStem bool) []domain.Candidate {
	var c collector
	ex := a.Extractors

	switch e.Category {
	case domain.CategoryImage:
		c.meta(m.Title, m.Description, m.DateTimeOriginal)
		if hasExt(ocrImageExts, e.AbsPath) && !anyUseful(m.Title, m.Description, m.DateTimeOriginal) {
			c.add(a.run(ctx, ex.Image, e.AbsPath), domain.SourceOcrImage)
		}
	case domain.CategoryDocument:
		c.meta(m.Title, m.Subject, m.Author)
		switch {
		case hasExt(pdfExts, e.AbsPath):
			if !quality.Useful(m.Title) && !quality.Useful(m.Subject) {
				c.add(a.run(ctx, ex.PDF, e.AbsPath), domain.SourcePdfText)
			}
		case hasExt(textExts, e.AbsPath):
			if !anyUseful(m.Title, m.Description, m.DateTimeOriginal) {
				c.add(a.run(ctx, ex.Text, e.AbsPath), domain.SourceTextExtract)
			}
		case hasExt(sheetExts, e.AbsPath):
			if !anyUseful(m.Title, m.Description, m.DateTimeOriginal) {
				c.add(a.run(ctx, ex.Sheet, e.AbsPath), domain.SourceTextExtract)
			}
		}
	case domain.CategoryAudio:
		c.meta(m.Title, m.Artist, m.Album)
	case domain.CategoryVideo:
		c.meta(m.Title, m.CreationDate)
		if !quality.Useful(m.Title) && !quality.Useful(m.CreationDate) {
			c.add(a.run(ctx, ex.Video, e.AbsPath), domain.SourceOcrVideo)
		}
	case domain.CategoryEmail:
		c.meta(a.run(ctx, ex.Email, e.AbsPath))
	case domain.CategoryWeb:
		c.meta(a.run(ctx, ex.Web, e.AbsPath))
	case domain.CategoryArchive:
		c.meta(a.run(ctx, ex.Archive, e.AbsPath))
	case domain.CategorySourceCode:
		c.meta(a.run(ctx, ex.Source, e.AbsPath))
	}

	if hasStem {
		c.add(stem.Text, domain.SourceFilenameAnalysis)
	}
	if dc, ok := hint.DirectoryContext(e.AbsPath); ok {
		c.add(dc, domain.SourceDirectoryContext)
	}
	return c.out
}

// run 调用提取器；提取器缺失或失败时返回空串。
func (a *Analyzer) run(ctx context.Context, x extract.Extractor, path string) string {
	if x == nil {
		return ""
	}
	s, ok, err := x.Extract(ctx, path)
	if err != nil {
		a.logger().Debug("extractor failed", "path", path, "extractor", x.Name(), "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return s
}

func anyUseful(vs ...string) bool {
	for _, v := range vs {
		if quality.Useful(v) {
			return true
		}
	}
	return false
}

type collector struct {
	out []domain.Candidate
}

func (c *collector) add(text string, src domain.Source) {
	if text == "" {
		return
	}
	c.out = append(c.out, domain.Candidate{Text: text, Source: src})
}

func (c *collector) meta(vs ...string) {
	for _, v := range vs {
		if quality.Useful(v) {
			c.add(v, domain.SourceMetadata)
		}
	}
}
