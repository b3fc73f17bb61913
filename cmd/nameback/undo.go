package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/history"
)

func newUndoCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		batch     string
		lastBatch bool
		list      bool
		path      string
	)
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "撤销最近的改名",
		Long: `默认撤销最近一条未撤销的改名记录。
--batch 撤销指定批次；--all-last-batch 撤销最近一次运行的全部改名。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if batch != "" && lastBatch {
				return errors.New("--batch 与 --all-last-batch 不能同时使用")
			}
			if path == "" {
				p, err := config.DefaultHistoryPath()
				if err != nil {
					return exitWith(exitError, fmt.Errorf("无法确定历史文件路径：%w", err))
				}
				path = p
			}
			h, err := history.Load(path, 0)
			if err != nil {
				return exitWith(exitError, err)
			}

			if list {
				printHistory(stdout, h.Operations())
				return nil
			}

			var ops []history.Operation
			switch {
			case batch != "" || lastBatch:
				if lastBatch {
					batch = h.LastBatch()
				}
				ops, err = h.UndoBatch(batch)
			default:
				var op history.Operation
				op, err = h.UndoLast()
				if err == nil {
					ops = []history.Operation{op}
				}
			}
			for _, op := range ops {
				fmt.Fprintf(stdout, "已恢复：%s -> %s\n", op.NewPath, op.OriginalPath)
			}
			if len(ops) > 0 {
				if serr := h.Save(); serr != nil {
					return exitWith(exitError, fmt.Errorf("写入历史文件失败：%w", serr))
				}
			}
			if err != nil {
				return exitWith(exitError, err)
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&batch, "batch", "", "撤销指定批次 id 的全部改名")
	cmd.Flags().BoolVar(&lastBatch, "all-last-batch", false, "撤销最近一次运行的全部改名")
	cmd.Flags().BoolVar(&list, "list", false, "列出历史记录（最新在前）")
	cmd.Flags().StringVar(&path, "history-path", "", "历史文件路径（默认使用平台状态目录）")
	return cmd
}

func printHistory(w io.Writer, ops []history.Operation) {
	if len(ops) == 0 {
		fmt.Fprintln(w, "没有历史记录")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\t时间\t批次\t状态\t原路径\t新路径")
	for i, op := range ops {
		state := "可撤销"
		if op.Undone {
			state = "已撤销"
		}
		ts := time.Unix(op.Timestamp, 0).Format("2006-01-02 15:04:05")
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i, ts, shortID(op.Batch), state, op.OriginalPath, op.NewPath)
	}
	_ = tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
