package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// version 由构建时 -ldflags "-X main.version=..." 注入。
var version = "dev"

// geteuid 用于 root 检查（测试替换）。
var geteuid = os.Geteuid

const (
	exitOK          = 0
	exitError       = 1
	exitRootRefused = 2
	exitToolMissing = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitCodeError 让子命令把退出码带回 execute。
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error { return e.err }

func exitWith(code int, err error) error { return &exitCodeError{code: code, err: err} }

// execute 是可测试的入口：解析参数、执行命令并返回进程退出码。
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// 以 root 运行会把用户文件改成 root 所有；在任何文件系统操作之前拒绝。
	if geteuid() == 0 {
		fmt.Fprintln(stderr, "拒绝以 root 身份运行：请使用普通用户执行 nameback")
		return exitRootRefused
	}

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ce *exitCodeError
	if errors.As(err, &ce) {
		if ce.err != nil {
			fmt.Fprintf(stderr, "错误：%v\n", ce.err)
		}
		return ce.code
	}
	fmt.Fprintf(stderr, "参数错误：%v\n", err)
	return exitError
}

func userAgent() string {
	return fmt.Sprintf("Nameback/%s (https://github.com/John-Robertt/nameback)", version)
}
