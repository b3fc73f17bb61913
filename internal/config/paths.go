package config

import (
	"os"
	"path/filepath"
	"runtime"
)

var (
	userConfigDir = os.UserConfigDir
	userCacheDir  = os.UserCacheDir
	userHomeDir   = os.UserHomeDir
)

// DefaultCachePath 返回 <UserCacheDir>/nameback/metadata_cache.json。
func DefaultCachePath() (string, error) {
	d, err := userCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "nameback", "metadata_cache.json"), nil
}

// DefaultHistoryPath 返回撤销历史文件路径：
// - POSIX：$XDG_STATE_HOME/nameback/history.json，未设置时 ~/.local/state/nameback/history.json
// - 其它平台：<UserConfigDir>/nameback/history.json
func DefaultHistoryPath() (string, error) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		d, err := userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(d, "nameback", "history.json"), nil
	}
	if d := os.Getenv("XDG_STATE_HOME"); filepath.IsAbs(d) {
		return filepath.Join(d, "nameback", "history.json"), nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "nameback", "history.json"), nil
}
