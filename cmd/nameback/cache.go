package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/infra/cache"
)

func newCacheCmd(stdout, stderr io.Writer) *cobra.Command {
	var path string

	open := func(readOnly bool) (*cache.Store, error) {
		if path == "" {
			p, err := config.DefaultCachePath()
			if err != nil {
				return nil, exitWith(exitError, fmt.Errorf("无法确定缓存路径：%w", err))
			}
			path = p
		}
		st, err := cache.Open(path, readOnly)
		if err != nil {
			fmt.Fprintf(stderr, "警告：%v\n", err)
		}
		return st, nil
	}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "查看或清空元数据缓存",
		Args:  cobra.NoArgs,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&path, "cache-path", "", "缓存文件路径（默认使用平台缓存目录）")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "显示缓存条目数与文件大小",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(true)
			if err != nil {
				return err
			}
			s := st.Stats()
			fmt.Fprintf(stdout, "缓存文件：%s\n条目数：%s\n大小：%s\n",
				st.Path, humanize.Comma(int64(s.Entries)), humanize.Bytes(uint64(s.Bytes)))
			return nil
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "清空缓存并删除缓存文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(false)
			if err != nil {
				return err
			}
			if err := st.Clear(); err != nil {
				return exitWith(exitError, fmt.Errorf("清空缓存失败：%w", err))
			}
			fmt.Fprintf(stdout, "已清空：%s\n", st.Path)
			return nil
		},
	}
	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
