// Package logx 构造进程内统一使用的 slog.Logger。
package logx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel 是日志级别环境变量；--verbose 优先于它。
const EnvLevel = "NAMEBACK_LOG"

// ParseLevel 识别 debug|info|warn|warning|error；其它值回退为 info。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New 构造 logger；json=true 使用 JSONHandler，否则 TextHandler。
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Level 按 verbose > NAMEBACK_LOG > info 决定级别。
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return ParseLevel(os.Getenv(EnvLevel))
}

// Discard 返回丢弃所有输出的 logger（测试与库默认值）。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
