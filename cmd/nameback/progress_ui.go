package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/nameback/internal/app/run"
	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端上的简洁进度输出。
//
// 约束：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：长时间没有文件完成时定期输出一行进度
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total   int
	done    int
	chosen  int
	skipped int
	cached  int
	percent float64
	message string

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(opts config.Options) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "rename"
	modeHint := ""
	if opts.DryRun {
		mode = "dry-run"
		modeHint = " (只预览，不改名)"
	}

	fmt.Fprintf(p.w, "[%s] nameback (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  dir: %s\n", opts.Dir)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  skip_hidden: %s\n", onOff(opts.SkipHidden))
	fmt.Fprintf(p.w, "  location: %s (geocode: %s)\n", onOff(opts.IncludeLocation), onOff(opts.Geocode))
	fmt.Fprintf(p.w, "  timestamp: %s\n", onOff(opts.IncludeTimestamp))
	fmt.Fprintf(p.w, "  multiframe_video: %s\n", onOff(opts.MultiframeVideo))
	fmt.Fprintf(p.w, "  workers: %d\n", opts.Workers)
	if opts.EnableCache {
		fmt.Fprintf(p.w, "  cache: %s\n", truncate(opts.CachePath, 120))
	} else {
		fmt.Fprintln(p.w, "  cache: off")
	}
	if opts.ConfigFile != "" {
		fmt.Fprintf(p.w, "  config: %s\n", opts.ConfigFile)
	}
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		p.total = intField(fields, "files")
		fmt.Fprintf(p.w, "扫描: files=%d (%s)\n\n", p.total, formatShortDuration(dur))
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	case "analyze":
		fmt.Fprintf(p.w, "\n分析: analyzed=%d cached=%d workers=%d (%s)\n",
			intField(fields, "analyzed"), intField(fields, "cached"), intField(fields, "workers"), formatShortDuration(dur),
		)
		p.stopTickerLocked()
	case "plan":
		fmt.Fprintf(p.w, "规划: proposals=%d series=%d dir_errors=%d (%s)\n",
			intField(fields, "proposals"), intField(fields, "series"), intField(fields, "dir_errors"), formatShortDuration(dur),
		)
	case "rename":
		fmt.Fprintf(p.w, "改名: ok=%d failed=%d (%s)\n\n",
			intField(fields, "ok"), intField(fields, "failed"), formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnFileDone(idx, total int, a domain.Analysis, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch {
	case a.Cached:
		p.cached++
		fmt.Fprintf(p.w, "[%d/%d] %s CACHE %s\n", idx, total, a.Entry.Name, truncate(a.Base, 80))
	case a.Chosen != nil:
		p.chosen++
		fmt.Fprintf(p.w, "[%d/%d] %s OK %s source=%s score=%.1f (%s)\n",
			idx, total, a.Entry.Name, truncate(a.Base, 80), a.Chosen.Source, a.Chosen.Score, formatShortDuration(dur),
		)
	default:
		p.skipped++
		fmt.Fprintf(p.w, "[%d/%d] %s SKIP 没有可用的候选名 (%s)\n", idx, total, a.Entry.Name, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnProgress(percent float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percent = percent
	p.message = message
}

// Stop 停止 keepalive（可重复调用）。
func (p *progressUI) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if time.Since(p.lastPrinted) > threshold {
					fmt.Fprintln(p.w, p.keepaliveLineLocked())
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) keepaliveLineLocked() string {
	line := fmt.Sprintf("进度: %3.0f%% done=%d/%d ok=%d skip=%d cache=%d elapsed=%s",
		p.percent, p.done, p.total, p.chosen, p.skipped, p.cached, formatElapsed(time.Since(p.startedAt)),
	)
	if p.message != "" {
		line += " 当前=" + truncate(p.message, 60)
	}
	return line
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
