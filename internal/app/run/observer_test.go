package run

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/enrich"
	"github.com/John-Robertt/nameback/internal/pipeline"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls int
	phases     []string
	files      []string
	percents   []float64
}

func (o *recordObserver) OnStart(config.Options) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnFileDone(idx, total int, a domain.Analysis, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files = append(o.files, a.Entry.Name)
}

func (o *recordObserver) OnProgress(percent float64, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.percents = append(o.percents, percent)
}

func TestRun_EmitsPhaseAndFileEvents(t *testing.T) {
	dir := workDir(t, "downloads")
	write(t, dir, "a.docx")
	write(t, dir, "b.docx")

	p := &stubProber{byExt: map[string]domain.Metadata{".docx": {Title: "Report"}}}
	e := newEngine(dir, p, pipeline.Extractors{}, enrich.Enricher{})
	e.Options.DryRun = true

	obs := &recordObserver{}
	if _, err := e.Run(context.Background(), obs); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}
	wantPhases := []string{"scan", "analyze", "plan", "rename"}
	if !reflect.DeepEqual(obs.phases, wantPhases) {
		t.Fatalf("阶段事件不符合预期：got=%v want=%v", obs.phases, wantPhases)
	}
	if len(obs.files) != 2 {
		t.Fatalf("期望 2 个文件事件，实际 %v", obs.files)
	}
	for i := 1; i < len(obs.percents); i++ {
		if obs.percents[i] < obs.percents[i-1] {
			t.Fatalf("进度不应回退：%v", obs.percents)
		}
	}
	if last := obs.percents[len(obs.percents)-1]; last != 100 {
		t.Fatalf("最后一次进度应为 100，实际 %v", last)
	}
}

func TestRun_NilObserver_SameResult(t *testing.T) {
	dir := workDir(t, "downloads")
	write(t, dir, "a.docx")

	p := &stubProber{byExt: map[string]domain.Metadata{".docx": {Title: "Report"}}}
	e := newEngine(dir, p, pipeline.Extractors{}, enrich.Enricher{})
	e.Options.DryRun = true

	a, err := e.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := e.Run(context.Background(), &recordObserver{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	// 时间字段本身允许有微小差异；对比时归零。
	a.StartedAt, a.FinishedAt = time.Time{}, time.Time{}
	b.StartedAt, b.FinishedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("observer 不应改变结果：\nnil=%+v\nobs=%+v", a, b)
	}
}
