package run

import (
	"fmt"
	"log/slog"

	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/enrich"
	"github.com/John-Robertt/nameback/internal/extract"
	"github.com/John-Robertt/nameback/internal/history"
	"github.com/John-Robertt/nameback/internal/infra/cache"
	"github.com/John-Robertt/nameback/internal/infra/geocode"
	"github.com/John-Robertt/nameback/internal/metadata"
	"github.com/John-Robertt/nameback/internal/pipeline"
)

// New 按最终配置装配真实的协作者：exiftool（goexif 兜底）、外部工具提取器、地理编码、缓存与历史。
//
// 返回的 close 必须在批次结束后调用（结束常驻的 exiftool 进程）。
func New(opts config.Options, userAgent string, logger *slog.Logger) (*Engine, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	et := metadata.NewExiftoolProber()
	runner := extract.ExecRunner{}

	enr := enrich.Enricher{
		IncludeLocation:  opts.IncludeLocation,
		IncludeTimestamp: opts.IncludeTimestamp,
		Geocode:          opts.Geocode,
		Logger:           logger,
	}
	if opts.IncludeLocation && opts.Geocode {
		gc, err := geocode.New(userAgent, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("初始化地理编码失败：%w", err)
		}
		enr.Geocoder = gc
	}

	e := &Engine{
		Options: opts,
		Analyzer: &pipeline.Analyzer{
			Prober:     metadata.Chain{et, metadata.NativeProber{}},
			Extractors: pipeline.NewExtractors(runner, opts.MultiframeVideo, logger),
			Enricher:   enr,
			Logger:     logger,
		},
		Logger: logger,
	}

	if opts.EnableCache {
		// dry-run 只查缓存不写回。
		st, err := cache.Open(opts.CachePath, opts.DryRun)
		if err != nil {
			logger.Warn("cache unavailable, continuing", "path", opts.CachePath, "err", err)
		}
		e.Cache = st
	}

	if !opts.DryRun && opts.HistoryPath != "" {
		h, err := history.Load(opts.HistoryPath, opts.HistoryMax)
		if err != nil {
			_ = et.Close()
			return nil, nil, fmt.Errorf("读取撤销历史失败：%w", err)
		}
		e.History = h
	}

	return e, et.Close, nil
}
