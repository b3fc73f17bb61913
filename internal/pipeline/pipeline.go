// Package pipeline 把单个文件从分类一路处理到富化后的基础名。
//
// 约束：
// - 只读文件，不做任何重命名；批次级的系列编号与冲突处理在 planner 中完成
// - 任何一步失败都只降级（记 debug 日志），不会让单个文件的分析报错
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/nameback/internal/classify"
	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/enrich"
	"github.com/John-Robertt/nameback/internal/extract"
	"github.com/John-Robertt/nameback/internal/hint"
	"github.com/John-Robertt/nameback/internal/metadata"
	"github.com/John-Robertt/nameback/internal/quality"
	"github.com/John-Robertt/nameback/internal/score"
)

// Extractors 是按用途分组的内容提取器；nil 表示该来源不可用。
type Extractors struct {
	PDF     extract.Extractor
	Text    extract.Extractor
	Sheet   extract.Extractor
	Image   extract.Extractor
	Video   extract.Extractor
	Email   extract.Extractor
	Web     extract.Extractor
	Archive extract.Extractor
	Source  extract.Extractor
}

var (
	pdfExts   = extSet("pdf")
	textExts  = extSet("txt", "text", "md", "markdown", "csv", "json", "yaml", "yml")
	sheetExts = extSet("xlsx", "xlsm")

	// OCR 只对光栅格式做（svg/ico 等跳过）。
	ocrImageExts = extSet("jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp", "heic", "heif")
)

// NewExtractors 构造默认提取器集合；所有外部工具都经由 r 调用，OCR 引擎按构建标签选择。
func NewExtractors(r extract.Runner, multiframe bool, logger *slog.Logger) Extractors {
	ocr := &extract.OCR{Engine: extract.DefaultEngine(r), Runner: r, Logger: logger}
	return Extractors{
		PDF:     extract.PDF{OCR: ocr, Runner: r, Logger: logger},
		Text:    extract.Text{},
		Sheet:   extract.Sheet{},
		Image:   extract.Image{OCR: ocr},
		Video:   extract.Video{Grabber: extract.FFmpeg{Runner: r}, OCR: ocr, Multiframe: multiframe, Logger: logger},
		Email:   extract.Email{},
		Web:     extract.Web{},
		Archive: extract.Archive{Runner: r},
		Source:  extract.Source{},
	}
}

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

func hasExt(set map[string]struct{}, path string) bool {
	_, ok := set[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
	return ok
}

// Analyzer 是单文件命名管线。零值不可用：Prober 为空时视为没有元数据。
type Analyzer struct {
	Prober     metadata.Prober
	Extractors Extractors
	Enricher   enrich.Enricher
	Logger     *slog.Logger

	classify func(path string) (domain.Category, error)
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Analyze 对单个文件执行 分类 -> 元数据 -> 候选 -> 打分 -> 选择 -> 富化。
func (a *Analyzer) Analyze(ctx context.Context, e domain.PathEntry) domain.Analysis {
	cls := a.classify
	if cls == nil {
		cls = classify.Classify
	}
	cat, err := cls(e.AbsPath)
	if err != nil {
		a.logger().Debug("classify failed", "path", e.AbsPath, "err", err)
	}
	e.Category = cat
	if cat == domain.CategoryUnknown {
		// 未知类型（含分类读取失败）不产生名字。
		return domain.Analysis{Entry: e}
	}

	m := a.probe(ctx, e.AbsPath)
	out := domain.Analysis{Entry: e, Metadata: m}

	stem, hasStem := hint.AnalyzeStem(e.Stem())
	out.Candidates = a.Candidates(ctx, e, m, stem, hasStem)

	chosen, ok := Choose(out.Candidates, stem, hasStem)
	if !ok {
		return out
	}
	out.Chosen = &chosen
	out.Base = a.Enricher.Apply(ctx, chosen.Text, m)
	return out
}

func (a *Analyzer) probe(ctx context.Context, path string) domain.Metadata {
	if a.Prober == nil {
		return domain.Metadata{}
	}
	m, err := a.Prober.Probe(ctx, path)
	if err != nil {
		a.logger().Debug("metadata probe failed", "path", path, "err", err)
		return domain.Metadata{}
	}
	return m.Normalize(quality.Useful)
}

// Choose 打分并选出最佳候选；没有候选达到阈值而文件名只剩日期时，以 Fallback 来源选中日期。
func Choose(cands []domain.Candidate, stem hint.StemResult, hasStem bool) (domain.Candidate, bool) {
	if best, ok := score.Select(score.Rank(cands)); ok {
		return best, true
	}
	if hasStem && stem.DatesOnly && stem.Text != "" {
		return domain.Candidate{
			Text:   stem.Text,
			Source: domain.SourceFallback,
			Score:  score.Score(stem.Text, domain.SourceFallback),
		}, true
	}
	return domain.Candidate{}, false
}
