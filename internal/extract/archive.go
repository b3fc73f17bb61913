package extract

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"unicode"
)

// maxArchiveEntries 限制读取的目录项数量。
const maxArchiveEntries = 10000

// Archive 只列目录、不解压：单个有效文件取其文件名主干，多个取公共前缀。
type Archive struct {
	Runner Runner
}

func (Archive) Name() string { return "archive" }

func (a Archive) Extract(ctx context.Context, p string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	names, err := a.List(ctx, p)
	if err != nil {
		return "", false, err
	}
	s, ok := NameFromListing(names)
	return s, ok, nil
}

// List 按扩展名选择列目录的方式；7z/rar 依赖外部工具。
func (a Archive) List(ctx context.Context, p string) ([]string, error) {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return listZip(p)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return listTar(p, true)
	case strings.HasSuffix(lower, ".tar"):
		return listTar(p, false)
	case strings.HasSuffix(lower, ".7z"):
		return a.listTool(ctx, "7z", []string{"l", "-ba", "-slt", p}, parse7zSLT)
	case strings.HasSuffix(lower, ".rar"):
		return a.listTool(ctx, "unrar", []string{"lb", p}, parseBare)
	default:
		return nil, nil
	}
}

func listZip(p string) ([]string, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var out []string
	for _, f := range zr.File {
		if len(out) >= maxArchiveEntries {
			break
		}
		if f.FileInfo().IsDir() {
			continue
		}
		out = append(out, f.Name)
	}
	return out, nil
}

func listTar(p string, gz bool) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if gz {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	var out []string
	for len(out) < maxArchiveEntries {
		h, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		if h.Typeflag == tar.TypeReg {
			out = append(out, h.Name)
		}
	}
	return out, nil
}

func (a Archive) listTool(ctx context.Context, bin string, args []string, parse func(string) []string) ([]string, error) {
	r := runnerOr(a.Runner)
	if _, err := r.LookPath(bin); err != nil {
		return nil, err
	}
	out, err := r.Run(ctx, bin, args...)
	if err != nil {
		return nil, err
	}
	return parse(string(out)), nil
}

// parse7zSLT 解析 `7z l -slt` 的 "Path = ..." 记录，跳过目录与归档自身的记录（带 Type 字段）。
func parse7zSLT(out string) []string {
	var (
		names []string
		cur   string
		skip  bool
	)
	flush := func() {
		if cur != "" && !skip {
			names = append(names, cur)
		}
		cur, skip = "", false
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		k, v, _ := strings.Cut(line, " = ")
		switch {
		case line == "":
			flush()
		case k == "Path":
			cur = v
		case k == "Type", k == "Folder" && v == "+":
			skip = true
		case k == "Attributes" && strings.HasPrefix(v, "D"):
			skip = true
		}
	}
	flush()
	return names
}

// parseBare 解析每行一个路径的列表（unrar lb）。
func parseBare(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasSuffix(line, "/") {
			names = append(names, line)
		}
	}
	return names
}

// isJunkEntry 识别系统生成文件与 readme/license。
func isJunkEntry(name string) bool {
	lower := strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	if strings.HasPrefix(lower, "__macosx/") || strings.Contains(lower, "/__macosx/") {
		return true
	}
	base := path.Base(lower)
	for _, p := range []string{".ds_store", "thumbs.db", "desktop.ini"} {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return strings.HasPrefix(base, "readme") || strings.HasPrefix(base, "license")
}

// NameFromListing 从文件列表推导名字。
func NameFromListing(names []string) (string, bool) {
	var files []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || strings.HasSuffix(n, "/") || isJunkEntry(n) {
			continue
		}
		files = append(files, strings.ReplaceAll(n, "\\", "/"))
	}
	switch len(files) {
	case 0:
		return "", false
	case 1:
		base := path.Base(files[0])
		stem := strings.TrimSuffix(base, path.Ext(base))
		if runeLen(stem) <= 2 {
			return "", false
		}
		s := cleanArchiveName(stem)
		return s, s != ""
	default:
		prefix := commonPrefix(files)
		if runeLen(prefix) <= 3 {
			return "", false
		}
		// 截到最后一个非字母数字边界。
		r := []rune(prefix)
		for i := len(r) - 1; i > 0; i-- {
			if !unicode.IsLetter(r[i]) && !unicode.IsDigit(r[i]) {
				prefix = string(r[:i])
				break
			}
		}
		s := cleanArchiveName(prefix)
		if runeLen(s) <= 3 {
			return "", false
		}
		return s, true
	}
}

func commonPrefix(ss []string) string {
	first := []rune(ss[0])
	n := len(first)
	for _, s := range ss[1:] {
		r := []rune(s)
		i := 0
		for i < n && i < len(r) && r[i] == first[i] {
			i++
		}
		n = i
	}
	return string(first[:n])
}

func cleanArchiveName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimFunc(b.String(), func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
}
