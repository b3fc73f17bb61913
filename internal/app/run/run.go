// Package run 是重命名引擎：扫描目录、逐文件跑命名管线、批次对账，然后执行改名并产出 RunReport。
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/John-Robertt/nameback/internal/app/planner"
	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/history"
	"github.com/John-Robertt/nameback/internal/infra/cache"
	"github.com/John-Robertt/nameback/internal/infra/fsx"
	"github.com/John-Robertt/nameback/internal/scan"
)

// FileAnalyzer 是单文件命名管线（*pipeline.Analyzer 实现它）。
type FileAnalyzer interface {
	Analyze(ctx context.Context, e domain.PathEntry) domain.Analysis
}

// Engine 持有一次批次所需的全部协作者。
//
// 约束：
// - Cache 为 nil 表示不使用持久缓存；ReadOnly 的缓存只查不写
// - History 为 nil 时改名照常执行，但不留撤销记录
// - 单个文件的失败只体现在结果里，不中断批次
type Engine struct {
	Options  config.Options
	Analyzer FileAnalyzer
	Cache    *cache.Store
	History  *history.History
	Logger   *slog.Logger

	scanFiles  func(root string, opts scan.Options) ([]domain.PathEntry, error)
	renameFunc func(src, dst string) error
	now        func() time.Time
}

// Plan 是分析与对账后的批次状态。
type Plan struct {
	Analyses []domain.Analysis
	// DirErrors 是无法读取现有条目的目录；其中的文件不会改名。
	DirErrors map[string]error
	Series    int
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) workers() int {
	w := e.Options.Workers
	if w < 1 {
		w = 1
	}
	return w
}

// AnalyzeDirectory 扫描 dir 并为每个文件给出提议的新名字。
//
// 先查缓存（只读），未命中的文件交给 worker pool；结果按路径重新排序后统一对账。
// 缓存写入与落盘在批次末尾各做一次。
func (e *Engine) AnalyzeDirectory(ctx context.Context, dir string, obs Observer) (Plan, error) {
	obs = observerOr(obs)
	log := e.logger()

	scanFn := e.scanFiles
	if scanFn == nil {
		scanFn = scan.ScanFiles
	}

	scanStarted := time.Now()
	files, err := scanFn(dir, scan.Options{
		SkipHidden: e.Options.SkipHidden,
		OnError: func(path string, err error) {
			log.Warn("scan skipped entry", "path", path, "err", err)
		},
	})
	if err != nil {
		return Plan{}, fmt.Errorf("扫描目录失败：%w", err)
	}
	obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, time.Since(scanStarted))

	analyzeStarted := time.Now()
	settings := e.Options.Fingerprint()
	total := len(files)
	out := make([]domain.Analysis, total)
	for i := range files {
		out[i] = domain.Analysis{Entry: files[i]}
	}

	if e.Cache != nil {
		keep := make(map[string]struct{}, total)
		for _, f := range files {
			keep[f.AbsPath] = struct{}{}
		}
		if root, err := filepath.Abs(dir); err == nil {
			if n := e.Cache.Prune(root, keep); n > 0 {
				log.Debug("cache pruned", "entries", n)
			}
		}
	}

	done, cached := 0, 0
	pending := make([]int, 0, total)
	for i, f := range files {
		a, ok := e.lookup(f, settings)
		if !ok {
			pending = append(pending, i)
			continue
		}
		out[i] = a
		cached++
		done++
		obs.OnFileDone(done, total, a, 0)
		obs.OnProgress(analyzePercent(done, total), f.Name)
	}

	type analyzed struct {
		idx int
		a   domain.Analysis
		dur time.Duration
	}

	workers := e.workers()
	jobs := make(chan int)
	results := make(chan analyzed, len(pending))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				started := time.Now()
				a := e.Analyzer.Analyze(ctx, files[idx])
				results <- analyzed{idx: idx, a: a, dur: time.Since(started)}
			}
		}()
	}

	go func() {
		for _, idx := range pending {
			if ctx.Err() != nil {
				break
			}
			jobs <- idx
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for r := range results {
		out[r.idx] = r.a
		done++
		obs.OnFileDone(done, total, r.a, r.dur)
		obs.OnProgress(analyzePercent(done, total), r.a.Entry.Name)
		e.remember(r.a, settings)
	}
	e.saveCache()

	obs.OnPhaseDone("analyze", map[string]any{
		"analyzed": len(pending),
		"cached":   cached,
		"workers":  workers,
	}, time.Since(analyzeStarted))

	if err := ctx.Err(); err != nil {
		return Plan{Analyses: out}, err
	}

	planStarted := time.Now()
	res := planner.Reconcile(out)
	for d, err := range res.DirErrors {
		log.Warn("directory unreadable, skipping its files", "dir", d, "err", err)
	}
	proposals := 0
	for _, a := range out {
		if a.HasProposal() {
			proposals++
		}
	}
	obs.OnPhaseDone("plan", map[string]any{
		"proposals":  proposals,
		"series":     len(res.Series),
		"dir_errors": len(res.DirErrors),
	}, time.Since(planStarted))

	return Plan{Analyses: out, DirErrors: res.DirErrors, Series: len(res.Series)}, nil
}

func (e *Engine) lookup(f domain.PathEntry, settings string) (domain.Analysis, bool) {
	if e.Cache == nil {
		return domain.Analysis{}, false
	}
	ent, ok := e.Cache.Lookup(f.AbsPath, f.Size, f.ModTime, settings)
	if !ok {
		return domain.Analysis{}, false
	}
	f.Category = domain.ParseCategory(ent.Category)
	return domain.Analysis{Entry: f, Base: ent.ProposedName, Cached: true}, true
}

func (e *Engine) remember(a domain.Analysis, settings string) {
	if e.Cache == nil || e.Cache.ReadOnly {
		return
	}
	f := a.Entry
	if err := e.Cache.Put(f.AbsPath, f.Size, f.ModTime, string(f.Category), a.Base, settings); err != nil {
		e.logger().Debug("cache put failed", "path", f.AbsPath, "err", err)
	}
}

func (e *Engine) saveCache() {
	if e.Cache == nil || e.Cache.ReadOnly {
		return
	}
	if err := e.Cache.Save(); err != nil {
		e.logger().Warn("cache save failed", "path", e.Cache.Path, "err", err)
	}
}

type renameOutcome struct {
	results []domain.RenameResult
	errs    map[string]error
	batch   string
}

// RenameFiles 为有提议的文件执行改名，返回逐条结果与写入撤销历史的批次 id。
//
// 约束：
// - 目标已存在时拒绝（从不覆盖）；提议与当前名相同的文件不在结果中
// - 撤销记录只在对应的改名成功之后追加
// - dryRun=true 时不触碰文件系统，结果全部 success=true，批次 id 为空
func (e *Engine) RenameFiles(ctx context.Context, analyses []domain.Analysis, dryRun bool, obs Observer) ([]domain.RenameResult, string) {
	o := e.renameAll(ctx, analyses, dryRun, observerOr(obs))
	return o.results, o.batch
}

func (e *Engine) renameAll(ctx context.Context, analyses []domain.Analysis, dryRun bool, obs Observer) renameOutcome {
	log := e.logger()
	rename := e.renameFunc
	if rename == nil {
		rename = fsx.RenameNoReplace
	}

	total := 0
	for _, a := range analyses {
		if a.HasProposal() {
			total++
		}
	}

	started := time.Now()
	o := renameOutcome{errs: map[string]error{}}
	batch := history.NewBatch()
	recorded := 0
	for _, a := range analyses {
		if !a.HasProposal() {
			continue
		}
		src := a.Entry.AbsPath
		dst := filepath.Join(a.Entry.Dir(), a.Proposed)
		r := domain.RenameResult{Original: src, NewPath: dst, NewName: a.Proposed}

		switch {
		case dryRun:
			r.Success = true
		case ctx.Err() != nil:
			o.errs[src] = ctx.Err()
			r.Error = ctx.Err().Error()
		default:
			if err := rename(src, dst); err != nil {
				o.errs[src] = err
				r.Error = err.Error()
				log.Warn("rename failed", "path", src, "target", dst, "err", err)
				break
			}
			r.Success = true
			log.Debug("renamed", "path", src, "target", dst)
			if e.History != nil {
				e.History.Add(batch, src, dst)
				recorded++
			}
		}
		o.results = append(o.results, r)
		obs.OnProgress(renamePercent(len(o.results), total), a.Proposed)
	}

	if recorded > 0 {
		o.batch = batch
		if err := e.History.Save(); err != nil {
			log.Warn("history save failed", "path", e.History.Path(), "err", err)
		}
	}

	ok := 0
	for _, r := range o.results {
		if r.Success {
			ok++
		}
	}
	obs.OnPhaseDone("rename", map[string]any{
		"dry_run": dryRun,
		"total":   total,
		"ok":      ok,
		"failed":  total - ok,
	}, time.Since(started))
	return o
}

// Run 执行完整批次：分析、对账、改名（或 dry-run），并返回对外稳定的 RunReport。
//
// 只有批次级致命错误（目录无法扫描、ctx 取消）才返回 error；此时不会改名任何文件。
func (e *Engine) Run(ctx context.Context, obs Observer) (domain.RunReport, error) {
	obs = observerOr(obs)
	obs.OnStart(e.Options)

	rr := domain.RunReport{
		Dir:       e.Options.Dir,
		DryRun:    e.Options.DryRun,
		StartedAt: e.clock(),
	}

	plan, err := e.AnalyzeDirectory(ctx, e.Options.Dir, obs)
	if err != nil {
		rr.FinishedAt = e.clock()
		rr.Finalize()
		return rr, err
	}

	o := e.renameAll(ctx, plan.Analyses, e.Options.DryRun, obs)
	rr.Batch = o.batch

	byPath := make(map[string]domain.RenameResult, len(o.results))
	for _, r := range o.results {
		byPath[r.Original] = r
	}
	rr.Files = make([]domain.FileReport, 0, len(plan.Analyses))
	for _, a := range plan.Analyses {
		var res *domain.RenameResult
		if r, ok := byPath[a.Entry.AbsPath]; ok {
			res = &r
		}
		rr.Files = append(rr.Files, fileReport(a, res, o.errs[a.Entry.AbsPath], plan.DirErrors[a.Entry.Dir()], e.Options.DryRun))
	}

	rr.FinishedAt = e.clock()
	rr.Finalize()
	obs.OnProgress(100, "完成")

	e.logger().Info("batch finished",
		"dir", rr.Dir,
		"dry_run", rr.DryRun,
		"renamed", rr.Summary.Renamed,
		"skipped", rr.Summary.Skipped,
		"failed", rr.Summary.Failed,
		"unchanged", rr.Summary.Unchanged,
	)
	return rr, nil
}

func fileReport(a domain.Analysis, res *domain.RenameResult, renameErr, dirErr error, dryRun bool) domain.FileReport {
	fr := domain.FileReport{
		Path:     a.Entry.AbsPath,
		Category: string(a.Entry.Category),
		Proposed: a.Proposed,
		Cached:   a.Cached,
	}
	if a.Chosen != nil {
		fr.Source = string(a.Chosen.Source)
		fr.Score = a.Chosen.Score
	}

	switch {
	case dirErr != nil:
		fr.Status = domain.FileStatusFailed
		fr.ErrorCode = domain.ErrCodeDirUnreadable
		fr.ErrorMsg = fmt.Sprintf("无法读取目录：%v", dirErr)
	case a.Base == "":
		fr.Status = domain.FileStatusSkipped
		fr.ErrorCode = domain.ErrCodeNoCandidate
		if a.Entry.Category == domain.CategoryUnknown {
			fr.ErrorCode = domain.ErrCodeUnknownCategory
		}
	case !a.HasProposal():
		fr.Status = domain.FileStatusUnchanged
	case res == nil:
		fr.Status = domain.FileStatusSkipped
	case res.Success && dryRun:
		fr.Status = domain.FileStatusPlanned
	case res.Success:
		fr.Status = domain.FileStatusRenamed
	default:
		fr.Status = domain.FileStatusFailed
		fr.ErrorCode = domain.ErrCodeRenameFailed
		if errors.Is(renameErr, fsx.ErrDestinationExists) || fsx.IsPathTypeConflict(renameErr) {
			fr.ErrorCode = domain.ErrCodeTargetConflict
		}
		fr.ErrorMsg = res.Error
	}
	return fr
}
