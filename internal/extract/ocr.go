package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/John-Robertt/nameback/internal/infra/imgx"
)

// DefaultLanguages 是 OCR 依次尝试的语言。
var DefaultLanguages = []string{"chi_tra", "chi_sim", "eng"}

const (
	minOCRChars = 10
	maxOCRName  = 80
)

// Recognition 是单次识别结果；Confidence 为 0 表示引擎不提供置信度。
type Recognition struct {
	Text       string
	Confidence float64
}

// Engine 是 OCR 引擎。
type Engine interface {
	Recognize(ctx context.Context, imagePath, lang string) (Recognition, error)
}

// Tesseract 通过 tesseract 命令行的 TSV 输出做识别。
type Tesseract struct {
	Bin    string
	Runner Runner
}

func (t Tesseract) bin() string {
	if t.Bin != "" {
		return t.Bin
	}
	return "tesseract"
}

func (t Tesseract) Recognize(ctx context.Context, imagePath, lang string) (Recognition, error) {
	r := runnerOr(t.Runner)
	if _, err := r.LookPath(t.bin()); err != nil {
		return Recognition{}, err
	}
	out, err := r.Run(ctx, t.bin(), imagePath, "stdout", "-l", lang, "tsv")
	if err != nil {
		return Recognition{}, err
	}
	return ParseTSV(string(out)), nil
}

// ParseTSV 解析 tesseract TSV：按行拼接文字，置信度取有效单词的平均值。
//
// 列：level page_num block_num par_num line_num word_num left top width height conf text
func ParseTSV(tsv string) Recognition {
	var (
		lines   []string
		cur     []string
		lastKey string
		sum     float64
		n       int
	)
	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 && strings.HasPrefix(row, "level") {
			continue
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		key := strings.Join(cols[1:5], ".")
		if key != lastKey && len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur = nil
		}
		lastKey = key
		cur = append(cur, word)
		if c, err := strconv.ParseFloat(cols[10], 64); err == nil && c >= 0 {
			sum += c
			n++
		}
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	rec := Recognition{Text: strings.Join(lines, "\n")}
	if n > 0 {
		rec.Confidence = sum / float64(n)
	}
	return rec
}

// OCR 在多种语言下识别同一张图片并选出最佳结果。
//
// 约束：
// - 有效结果：清洗后至少 minOCRChars 个字符
// - 置信度高者胜；置信度相同按字符数
// - 小图先放大（imgx.PrepareForOCR）；HEIC/HEIF 先转为 PNG
type OCR struct {
	Engine    Engine
	Languages []string
	Runner    Runner
	// TmpDir 为空时使用系统临时目录。
	TmpDir string
	Logger *slog.Logger
}

func (o *OCR) languages() []string {
	if len(o.Languages) > 0 {
		return o.Languages
	}
	return DefaultLanguages
}

func (o *OCR) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Recognize 返回清洗并截断到 80 个字符的文本。
func (o *OCR) Recognize(ctx context.Context, imagePath string) (string, bool, error) {
	text, ok, err := o.RecognizeFull(ctx, imagePath)
	if !ok {
		return "", false, err
	}
	return FirstRunes(text, maxOCRName), true, nil
}

// RecognizeFull 返回最佳语言下清洗后的完整文本。
func (o *OCR) RecognizeFull(ctx context.Context, imagePath string) (string, bool, error) {
	if o == nil || o.Engine == nil {
		return "", false, fmt.Errorf("%w：OCR 引擎未配置", ErrToolMissing)
	}

	src := imagePath
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".heic", ".heif":
		png, err := o.convertHEIC(ctx, imagePath)
		if err != nil {
			return "", false, err
		}
		defer os.Remove(png)
		src = png
	}

	prep, err := imgx.PrepareForOCR(src, o.TmpDir)
	if err != nil {
		o.logger().Debug("ocr preprocess failed, using original", "path", imagePath, "err", err)
	}
	defer prep.Cleanup()

	var (
		best    Recognition
		bestLen int
		lastErr error
	)
	for _, lang := range o.languages() {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		rec, err := o.Engine.Recognize(ctx, prep.Path, lang)
		if err != nil {
			lastErr = err
			o.logger().Debug("ocr language failed", "path", imagePath, "lang", lang, "err", err)
			continue
		}
		cleaned := CleanText(rec.Text)
		n := runeLen(cleaned)
		if n < minOCRChars {
			continue
		}
		if bestLen == 0 || rec.Confidence > best.Confidence || (rec.Confidence == best.Confidence && n > bestLen) {
			best = Recognition{Text: cleaned, Confidence: rec.Confidence}
			bestLen = n
		}
	}
	if bestLen == 0 {
		return "", false, lastErr
	}
	return best.Text, true, nil
}

// convertHEIC 先试 sips（macOS），再试 ImageMagick。
func (o *OCR) convertHEIC(ctx context.Context, path string) (string, error) {
	r := runnerOr(o.Runner)
	out, err := imgx.TempName(o.TmpDir, "nameback-heic-", ".png")
	if err != nil {
		return "", err
	}
	if _, err := r.LookPath("sips"); err == nil {
		if _, err := r.Run(ctx, "sips", "-s", "format", "png", path, "--out", out); err == nil {
			return out, nil
		}
		_ = os.Remove(out)
	}
	if _, err := r.LookPath("magick"); err != nil {
		return "", fmt.Errorf("HEIC 转换失败：%w", err)
	}
	if _, err := r.Run(ctx, "magick", path, out); err != nil {
		// 转换中途失败可能留下半个 PNG。
		_ = os.Remove(out)
		return "", fmt.Errorf("HEIC 转换失败：%w", err)
	}
	return out, nil
}

// Image 是图片 OCR 提取器。
type Image struct {
	OCR *OCR
}

func (Image) Name() string { return "ocr_image" }

func (i Image) Extract(ctx context.Context, path string) (string, bool, error) {
	return i.OCR.Recognize(ctx, path)
}
