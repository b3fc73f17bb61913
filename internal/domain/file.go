package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// PathEntry 描述一次扫描得到的文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - 创建后不再修改；批次结束即丢弃
type PathEntry struct {
	AbsPath  string    `json:"path"`
	Name     string    `json:"name"` // 原始文件名（含扩展名）
	Ext      string    `json:"ext"`  // 原样保留大小写，例如 ".JPG"；无扩展名时为空
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mtime"`
	Category Category  `json:"category"`
}

// NewPathEntry 由绝对路径与 stat 结果构造 PathEntry（Category 由分类器稍后填充）。
func NewPathEntry(abs string, size int64, mod time.Time) PathEntry {
	name := filepath.Base(abs)
	return PathEntry{
		AbsPath:  filepath.Clean(abs),
		Name:     name,
		Ext:      filepath.Ext(name),
		Size:     size,
		ModTime:  mod,
		Category: CategoryUnknown,
	}
}

// Dir 返回文件所在目录（重命名的目标目录）。
func (p PathEntry) Dir() string { return filepath.Dir(p.AbsPath) }

// Stem 返回去掉扩展名后的文件名。
func (p PathEntry) Stem() string { return strings.TrimSuffix(p.Name, p.Ext) }
