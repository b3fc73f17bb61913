package hint

import (
	"path/filepath"
	"strconv"
	"strings"
)

var genericDirNames = wordSet(
	"documents", "downloads", "desktop", "pictures", "videos",
	"music", "photos", "files", "mydocuments",
	"tmp", "temp", "temporary", "cache", "data",
	"misc", "miscellaneous", "other", "stuff", "things",
	"new", "old", "archive", "backup",
	"src", "lib", "bin", "build", "dist", "output",
)

// IsGenericDirName 判断目录名是否过于宽泛（大小写不敏感；含 1900-2100 年份与 01-12 月份）。
func IsGenericDirName(name string) bool {
	l := strings.ToLower(name)
	if _, ok := genericDirNames[l]; ok {
		return true
	}
	if len(l) == 4 && allDigits(l) {
		y, _ := strconv.Atoi(l)
		return y >= 1900 && y <= 2100
	}
	if len(l) == 2 && allDigits(l) {
		m, _ := strconv.Atoi(l)
		return m >= 1 && m <= 12
	}
	return false
}

// DirectoryContext 从父目录与祖父目录名中提取上下文（祖父在前，以 _ 连接）。
//
// 约束：
// - 宽泛目录名被丢弃
// - 祖父目录与父目录同名时只取一次
func DirectoryContext(path string) (string, bool) {
	parent := filepath.Dir(path)
	pname := dirName(parent)
	if pname == "" {
		return "", false
	}

	var parts []string
	if gname := dirName(filepath.Dir(parent)); gname != "" && gname != pname && !IsGenericDirName(gname) {
		parts = append(parts, gname)
	}
	if !IsGenericDirName(pname) {
		parts = append(parts, pname)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "_"), true
}

func dirName(p string) string {
	if p == "." || p == string(filepath.Separator) || p == "" {
		return ""
	}
	b := filepath.Base(p)
	if b == "." || b == string(filepath.Separator) {
		return ""
	}
	return b
}
