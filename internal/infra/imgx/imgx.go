// Package imgx 做 OCR 前的图片预处理。
package imgx

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // 注册 GIF 解码器
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// MinOCRSide 是 OCR 可接受的最短"长边"像素数；更小的图片先放大。
const MinOCRSide = 1000

// maxUpscale 限制放大倍数，避免把缩略图放大成噪点。
const maxUpscale = 4

// Prepared 是预处理结果；Cleanup 删除过程中产生的临时文件（可重复调用）。
type Prepared struct {
	Path    string
	Scaled  bool
	Cleanup func()
}

// PrepareForOCR 在需要时把小图放大为临时 PNG。
//
// 约束：
// - 仅处理标准库可解码的格式（JPEG/PNG/GIF）；其它格式原样交给 OCR 引擎
// - 长边 >= MinOCRSide 时不复制文件，直接返回原路径
// - 放大使用 Lanczos3，输出固定为 PNG（无损）
func PrepareForOCR(path, tmpDir string) (Prepared, error) {
	noop := Prepared{Path: path, Cleanup: func() {}}

	f, err := os.Open(path)
	if err != nil {
		return noop, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return noop, nil
		}
		return noop, err
	}
	long := max(cfg.Width, cfg.Height)
	if long <= 0 {
		return noop, errors.New("图片尺寸无效")
	}
	if long >= MinOCRSide {
		return noop, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return noop, err
	}
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return noop, err
	}

	scaled := Upscale(img, MinOCRSide)

	out, err := os.CreateTemp(tmpDir, "nameback-ocr-*.png")
	if err != nil {
		return noop, err
	}
	tmp := out.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if err := png.Encode(out, scaled); err != nil {
		_ = out.Close()
		cleanup()
		return noop, fmt.Errorf("编码 PNG 失败：%w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return noop, err
	}
	return Prepared{Path: tmp, Scaled: true, Cleanup: cleanup}, nil
}

// Upscale 把长边放大到 target（保持宽高比，最多 maxUpscale 倍）；已足够大时原样返回。
func Upscale(img image.Image, target int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := max(w, h)
	if long <= 0 || long >= target {
		return img
	}
	if target > long*maxUpscale {
		target = long * maxUpscale
	}
	if w >= h {
		return resize.Resize(uint(target), 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, uint(target), img, resize.Lanczos3)
}

// TempName 返回 dir 下带前缀的临时文件路径（不创建文件），供外部工具写入。
func TempName(dir, prefix, ext string) (string, error) {
	f, err := os.CreateTemp(dir, prefix+"*"+ext)
	if err != nil {
		return "", err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return filepath.Clean(name), nil
}
