// Package deps 判断命名管线在某个目录上需要哪些外部工具，以及它们是否可用。
//
// 这里只关心"管线需要什么"；安装由外部安装器负责。
package deps

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrToolMissing 表示必需的外部工具不可用（错误信息中包含工具名）。
var ErrToolMissing = errors.New("缺少必需的外部工具")

const (
	// MaxDepth 是采样扫描的最大目录深度（根目录为 0）。
	MaxDepth = 3
	// MaxFiles 是采样扫描的最大文件数。
	MaxFiles = 1000
)

// Tool 描述一个外部工具；Bins 中任意一个可执行文件存在即视为可用。
type Tool struct {
	Name     string
	Bins     []string
	Required bool
	Purpose  string
}

var (
	Exiftool  = Tool{Name: "exiftool", Bins: []string{"exiftool"}, Required: true, Purpose: "元数据读取（必需）"}
	Tesseract = Tool{Name: "tesseract", Bins: []string{"tesseract"}, Purpose: "图片与视频帧 OCR"}
	FFmpeg    = Tool{Name: "ffmpeg", Bins: []string{"ffmpeg"}, Purpose: "视频抽帧"}
	Pdftoppm  = Tool{Name: "pdftoppm", Bins: []string{"pdftoppm"}, Purpose: "扫描版 PDF 栅格化"}
	Magick    = Tool{Name: "imagemagick", Bins: []string{"magick", "convert"}, Purpose: "HEIC/HEIF 转换"}
	SevenZip  = Tool{Name: "7z", Bins: []string{"7z", "7za"}, Purpose: "7z 归档列表"}
	Unrar     = Tool{Name: "unrar", Bins: []string{"unrar"}, Purpose: "rar 归档列表"}
)

// Tools 是全部已知工具（必需在前）。
var Tools = []Tool{Exiftool, Tesseract, FFmpeg, Pdftoppm, Magick, SevenZip, Unrar}

var lookPath = exec.LookPath

var extNeeds = map[string][]Tool{}

func need(t []Tool, exts ...string) {
	for _, e := range exts {
		extNeeds[e] = append(extNeeds[e], t...)
	}
}

func init() {
	need([]Tool{Tesseract}, "jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp")
	need([]Tool{Tesseract}, "heic", "heif")
	if runtime.GOOS != "darwin" {
		// macOS 自带 sips。
		need([]Tool{Magick}, "heic", "heif")
	}
	need([]Tool{FFmpeg, Tesseract}, "mp4", "mov", "avi", "mkv", "webm", "flv", "wmv", "m4v")
	need([]Tool{Pdftoppm, Tesseract}, "pdf")
	need([]Tool{SevenZip}, "7z")
	need([]Tool{Unrar}, "rar")
}

// Needs 采样扫描 dir（深度不超过 MaxDepth、文件数不超过 MaxFiles），按扩展名返回用得到的工具名集合。
// exiftool 总在其中。
func Needs(dir string) (map[string]bool, error) {
	root := filepath.Clean(dir)
	out := map[string]bool{Exiftool.Name: true}

	files := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		if d.IsDir() {
			if path != root && depth(root, path) >= MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || depth(root, path) > MaxDepth {
			return nil
		}
		files++
		if files > MaxFiles {
			return filepath.SkipAll
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		for _, t := range extNeeds[ext] {
			out[t.Name] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// depth 返回 path 相对 root 的层数；root 下的直接条目为 1。
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// Status 是单个工具的检查结果。
type Status struct {
	Tool   Tool
	Needed bool
	Found  bool
	Path   string
}

// Check 返回 Tools 中每个工具的可用性；needed 为 nil 时视为全部需要。
func Check(needed map[string]bool) []Status {
	out := make([]Status, 0, len(Tools))
	for _, t := range Tools {
		st := Status{Tool: t, Needed: needed == nil || needed[t.Name] || t.Required}
		for _, b := range t.Bins {
			if p, err := lookPath(b); err == nil {
				st.Found, st.Path = true, p
				break
			}
		}
		out = append(out, st)
	}
	return out
}

// MissingRequired 在必需工具缺失时返回包装了 ErrToolMissing 的错误。
func MissingRequired(sts []Status) error {
	var names []string
	for _, s := range sts {
		if s.Tool.Required && !s.Found {
			names = append(names, s.Tool.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%w：%s", ErrToolMissing, strings.Join(names, ", "))
}

// MissingOptional 返回需要但不可用的可选工具名。
func MissingOptional(sts []Status) []string {
	var names []string
	for _, s := range sts {
		if !s.Tool.Required && s.Needed && !s.Found {
			names = append(names, s.Tool.Name)
		}
	}
	return names
}
