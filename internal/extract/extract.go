// Package extract 从文件内容中提取候选名（不修改文件）。
//
// 约束：
// - 每个提取器只读文件；失败只影响本提取器，不影响同一文件的其它候选
// - "没有结果"用 ok=false 表达；error 只用于 I/O 或外部工具故障，调用方记 debug 日志后忽略
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrToolMissing 表示所需的外部工具不在 PATH 中。
var ErrToolMissing = errors.New("外部工具不可用")

// Extractor 从单个文件中提取一段候选文本。
type Extractor interface {
	Name() string
	Extract(ctx context.Context, path string) (string, bool, error)
}

// Runner 执行外部命令并返回 stdout；测试中可替换。
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner 是基于 os/exec 的 Runner。
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w：%s", ErrToolMissing, name)
	}
	return p, nil
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s 执行失败：%w：%s", name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s 执行失败：%w", name, err)
	}
	return stdout.Bytes(), nil
}

func runnerOr(r Runner) Runner {
	if r == nil {
		return ExecRunner{}
	}
	return r
}
