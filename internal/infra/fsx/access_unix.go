//go:build unix

package fsx

import "golang.org/x/sys/unix"

// Writable 表示当前进程对 dir 是否有写权限（access(2) W_OK）。
func Writable(dir string) bool {
	return unix.Access(dir, unix.W_OK) == nil
}
