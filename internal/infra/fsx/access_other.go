//go:build !unix

package fsx

import "os"

// Writable 通过在 dir 下创建临时文件判断是否可写。
func Writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".nameback-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

func isEXDEV(error) bool { return false }
