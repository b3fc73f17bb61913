package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/nameback/internal/domain"
)

// ConfigFileName 是根目录下不参与重命名的配置文件。
const ConfigFileName = "nameback.yaml"

var readDir = os.ReadDir

// Options 控制扫描行为。
type Options struct {
	// SkipHidden 跳过以 "." 开头的文件与目录（根目录本身除外）。
	SkipHidden bool
	// OnError 接收无法访问的条目；为 nil 时静默跳过。
	OnError func(path string, err error)
}

// ScanFiles 递归扫描 root 下的普通文件。
//
// 规则（硬约束）：
// - 不跟随符号链接；符号链接、设备文件等非普通文件一律忽略
// - 单个条目不可访问时跳过并上报 OnError，不中断整个扫描
// - root 本身不可访问时返回错误
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
func ScanFiles(root string, opts Options) ([]domain.PathEntry, error) {
	root, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(root, ConfigFileName)

	files := make([]domain.PathEntry, 0, 128)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			report(opts, path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if path == configPath {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			report(opts, path, err)
			return nil
		}
		files = append(files, domain.NewPathEntry(path, info.Size(), info.ModTime()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出：路径顺序就是冲突消解的全序。
	sort.Slice(files, func(i, j int) bool { return files[i].AbsPath < files[j].AbsPath })
	return files, nil
}

func report(opts Options, path string, err error) {
	if opts.OnError != nil {
		opts.OnError(path, err)
	}
}

// DirNames 返回 dir 下现有条目名（含目录），用于初始化冲突消解器。
func DirNames(dir string) ([]string, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
