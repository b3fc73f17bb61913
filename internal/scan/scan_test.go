package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestScanFiles_RecursiveAndSorted(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "b.txt"))
	touch(t, filepath.Join(root, "a", "z.jpg"))
	touch(t, filepath.Join(root, "a", "y.pdf"))

	got, err := ScanFiles(root, Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{
		filepath.Join(root, "a", "y.pdf"),
		filepath.Join(root, "a", "z.jpg"),
		filepath.Join(root, "b.txt"),
	}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 个文件，实际 %d", len(want), len(got))
	}
	for i := range want {
		if got[i].AbsPath != want[i] {
			t.Fatalf("第 %d 项期望 %q，实际 %q", i, want[i], got[i].AbsPath)
		}
	}
	if got[0].Name != "y.pdf" || got[0].Ext != ".pdf" || got[0].Size != 1 {
		t.Fatalf("PathEntry 字段不正确：%+v", got[0])
	}
}

func TestScanFiles_SkipHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".secret.txt"))
	touch(t, filepath.Join(root, ".git", "config"))
	touch(t, filepath.Join(root, "visible.txt"))

	got, err := ScanFiles(root, Options{SkipHidden: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0].Name != "visible.txt" {
		t.Fatalf("skip-hidden 结果不正确：%+v", got)
	}

	got, err = ScanFiles(root, Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 3 {
		t.Fatalf("默认应包含隐藏文件，实际 %d 个", len(got))
	}
}

func TestScanFiles_HiddenRootIsScanned(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".photos")
	touch(t, filepath.Join(root, "a.jpg"))

	got, err := ScanFiles(root, Options{SkipHidden: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("隐藏的根目录本身不应被跳过，实际 %d 个", len(got))
	}
}

func TestScanFiles_IgnoresConfigAndSymlinks(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ConfigFileName))
	touch(t, filepath.Join(root, "real.txt"))
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("无法创建符号链接：%v", err)
	}

	got, err := ScanFiles(root, Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0].Name != "real.txt" {
		t.Fatalf("期望只有 real.txt，实际 %+v", got)
	}
}

func TestScanFiles_MissingRoot(t *testing.T) {
	if _, err := ScanFiles(filepath.Join(t.TempDir(), "nope"), Options{}); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestDirNames(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "sub", "b.txt"))

	names, err := DirNames(root)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "sub" {
		t.Fatalf("DirNames 不正确：%v", names)
	}

	old := readDir
	readDir = func(string) ([]os.DirEntry, error) { return nil, errors.New("boom") }
	defer func() { readDir = old }()
	if _, err := DirNames(root); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
