package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/nameback/internal/deps"
	"github.com/John-Robertt/nameback/internal/domain"
)

var (
	colorOK   = color.New(color.FgGreen, color.Bold)
	colorFail = color.New(color.FgRed, color.Bold)
	colorSkip = color.New(color.FgYellow)
	colorDim  = color.New(color.FgCyan)
)

// emitReport 遵守 stdout 契约：终端上打印彩色摘要；否则 stdout 只输出一个 RunReport JSON，摘要写 stderr。
func emitReport(stdout, stderr io.Writer, rr domain.RunReport) {
	if !isTTY(stdout) {
		enc := json.NewEncoder(stdout)
		_ = enc.Encode(rr)
		fmt.Fprintln(stderr, summaryLine(rr))
		return
	}

	for _, f := range rr.Files {
		name := filepath.Base(f.Path)
		switch f.Status {
		case domain.FileStatusRenamed, domain.FileStatusPlanned:
			colorOK.Fprint(stdout, "  ✓ ")
			fmt.Fprintf(stdout, "%s -> %s", name, f.Proposed)
			colorDim.Fprintf(stdout, "  [%s %.1f]\n", sourceLabel(f), f.Score)
		case domain.FileStatusFailed:
			colorFail.Fprint(stdout, "  ✗ ")
			fmt.Fprintf(stdout, "%s: %s %s\n", name, f.ErrorCode, f.ErrorMsg)
		case domain.FileStatusSkipped:
			colorSkip.Fprint(stdout, "  - ")
			fmt.Fprintf(stdout, "%s (%s)\n", name, f.ErrorCode)
		}
	}
	fmt.Fprintln(stdout, summaryLine(rr))
	if rr.Batch != "" {
		colorDim.Fprintf(stdout, "撤销：nameback undo --batch %s\n", rr.Batch)
	}
}

func sourceLabel(f domain.FileReport) string {
	if f.Cached {
		return "cache"
	}
	return f.Source
}

func summaryLine(rr domain.RunReport) string {
	verb := "已改名"
	if rr.DryRun {
		verb = "将改名"
	}
	return fmt.Sprintf("完成：%s=%d skipped=%d failed=%d unchanged=%d",
		verb, rr.Summary.Renamed, rr.Summary.Skipped, rr.Summary.Failed, rr.Summary.Unchanged,
	)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func pickProgressWriter(stdout, stderr io.Writer) (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(stderr) {
		return stderr, true
	}
	// 只重定向了 stderr 时，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(stdout) {
		return stdout, true
	}
	return nil, false
}

func printDepsTable(w io.Writer, sts []deps.Status) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "工具\t状态\t需要\t用途")
	for _, s := range sts {
		state := "缺失"
		if s.Found {
			state = "可用 " + s.Path
		}
		needed := "否"
		switch {
		case s.Tool.Required:
			needed = "必需"
		case s.Needed:
			needed = "是"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Tool.Name, state, needed, s.Tool.Purpose)
	}
	_ = tw.Flush()
	if missing := deps.MissingOptional(sts); len(missing) > 0 {
		fmt.Fprintf(w, "\n缺少可选工具 %v：对应的提取器会被跳过，其它候选照常参与命名。\n", missing)
	}
}

func printInstallHint(w io.Writer) {
	fmt.Fprint(w, `nameback 不自动安装外部工具，请用系统包管理器安装：

  macOS:          brew install exiftool tesseract tesseract-lang ffmpeg poppler imagemagick p7zip
  Debian/Ubuntu:  sudo apt install libimage-exiftool-perl tesseract-ocr tesseract-ocr-chi-sim tesseract-ocr-chi-tra ffmpeg poppler-utils imagemagick p7zip-full unrar
  Fedora:         sudo dnf install perl-Image-ExifTool tesseract ffmpeg poppler-utils ImageMagick p7zip
  Windows:        winget install OliverBetz.ExifTool UB-Mannheim.TesseractOCR Gyan.FFmpeg

只有 exiftool 是必需的；运行 "nameback --check-deps <dir>" 查看目录实际需要哪些工具。
`)
}
