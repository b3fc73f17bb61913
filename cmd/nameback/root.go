package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/nameback/internal/app/run"
	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/deps"
	"github.com/John-Robertt/nameback/internal/logx"
)

type rootFlags struct {
	dryRun           bool
	skipHidden       bool
	verbose          bool
	installDeps      bool
	checkDeps        bool
	includeLocation  bool
	includeTimestamp bool
	fastVideo        bool
	noGeocode        bool
	noCache          bool
	logJSON          bool
	workers          int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "nameback [dir]",
		Short: "按文件内容与元数据为目录中的文件起有意义的名字",
		Long: `nameback 扫描目录，为每个文件从元数据、正文、OCR、目录名与原文件名中挑选最合适的名字，
然后在原目录内改名（从不覆盖已有文件）。

使用 -n 预览；改名记录可以用 "nameback undo" 撤销。`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, f, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.BoolVarP(&f.dryRun, "dry-run", "n", false, "只预览，不改名")
	fl.BoolVarP(&f.skipHidden, "skip-hidden", "s", false, "跳过以 . 开头的文件与目录")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "输出 debug 日志")
	fl.BoolVar(&f.installDeps, "install-deps", false, "显示外部工具的安装方式")
	fl.BoolVar(&f.checkDeps, "check-deps", false, "检查外部工具是否可用（缺少必需工具时退出码为 3）")
	fl.BoolVar(&f.includeLocation, "include-location", false, "在名字后追加拍摄地点")
	fl.BoolVar(&f.includeTimestamp, "include-timestamp", false, "在名字后追加拍摄/创建日期")
	fl.BoolVar(&f.fastVideo, "fast-video", false, "视频只抽取 1 秒处的一帧")
	fl.BoolVar(&f.noGeocode, "no-geocode", false, "不做反向地理编码，地点使用坐标")
	fl.BoolVar(&f.noCache, "no-cache", false, "不使用元数据缓存")
	fl.BoolVar(&f.logJSON, "log-json", false, "日志使用 JSON 格式")
	fl.IntVar(&f.workers, "workers", config.DefaultWorkers, fmt.Sprintf("并发分析的文件数（1-%d）", config.MaxWorkers))

	cmd.AddCommand(newUndoCmd(stdout, stderr), newCacheCmd(stdout, stderr))
	return cmd
}

// checkTools 用于依赖检查（测试替换）。
var checkTools = deps.Check

// newEngine 装配引擎（测试替换）。
var newEngine = run.New

func runRoot(cmd *cobra.Command, f *rootFlags, args []string, stdout, stderr io.Writer) error {
	logger := logx.New(stderr, logx.Level(f.verbose), f.logJSON)

	if f.installDeps {
		printInstallHint(stdout)
		return nil
	}

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}

	if f.checkDeps {
		target := dir
		if target == "" {
			target = "."
		}
		needs, err := deps.Needs(target)
		if err != nil {
			return exitWith(exitError, fmt.Errorf("扫描目录失败：%w", err))
		}
		sts := checkTools(needs)
		printDepsTable(stdout, sts)
		if err := deps.MissingRequired(sts); err != nil {
			return exitWith(exitToolMissing, err)
		}
		return nil
	}

	if dir == "" {
		_ = cmd.Usage()
		return exitWith(exitError, errors.New("未指定目标目录"))
	}

	fl := cmd.Flags()
	cwd, err := os.Getwd()
	if err != nil {
		return exitWith(exitError, fmt.Errorf("读取当前目录失败：%w", err))
	}
	opts, err := config.LoadEffective(cwd, config.CLIArgs{
		Dir:                 dir,
		DryRun:              f.dryRun,
		SkipHidden:          f.skipHidden,
		SkipHiddenSet:       fl.Changed("skip-hidden"),
		IncludeLocation:     f.includeLocation,
		IncludeLocationSet:  fl.Changed("include-location"),
		IncludeTimestamp:    f.includeTimestamp,
		IncludeTimestampSet: fl.Changed("include-timestamp"),
		FastVideo:           f.fastVideo,
		FastVideoSet:        fl.Changed("fast-video"),
		NoGeocode:           f.noGeocode,
		NoGeocodeSet:        fl.Changed("no-geocode"),
		NoCache:             f.noCache,
		NoCacheSet:          fl.Changed("no-cache"),
		Workers:             f.workers,
		WorkersSet:          fl.Changed("workers"),
	})
	if err != nil {
		return exitWith(exitError, err)
	}
	if opts.ConfigFile != "" {
		logger.Debug("config loaded", "path", opts.ConfigFile)
	}

	if err := deps.MissingRequired(checkTools(map[string]bool{deps.Exiftool.Name: true})); err != nil {
		logger.Warn("exiftool not found, falling back to built-in EXIF reader", "err", err)
	}

	engine, closeEngine, err := newEngine(opts, userAgent(), logger)
	if err != nil {
		return exitWith(exitError, err)
	}
	defer func() {
		if err := closeEngine(); err != nil {
			logger.Debug("close exiftool failed", "err", err)
		}
	}()

	var obs run.Observer
	if w, interactive := pickProgressWriter(stdout, stderr); interactive {
		ui := newProgressUI(w)
		defer ui.Stop()
		obs = ui
	}

	rr, err := engine.Run(cmd.Context(), obs)
	if err != nil {
		return exitWith(exitError, err)
	}
	// 单个文件失败只记录在报告中，不影响退出码。
	emitReport(stdout, stderr, rr)
	return nil
}
