package run

import (
	"time"

	"github.com/John-Robertt/nameback/internal/config"
	"github.com/John-Robertt/nameback/internal/domain"
)

// Observer 用于把"运行进度/阶段/文件结果"从引擎中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全：事件可能来自多个 goroutine。
type Observer interface {
	// OnStart 在 Run 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(opts config.Options)
	// OnPhaseDone 在阶段结束时调用（scan / analyze / plan / rename）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnFileDone 在单个文件分析完成时调用；缓存命中的文件同样会触发。
	OnFileDone(idx, total int, a domain.Analysis, dur time.Duration)
	// OnProgress 报告整体进度（0-100）与一句简短说明。
	OnProgress(percent float64, message string)
}

// nopObserver 让引擎内部不必到处判断 nil。
type nopObserver struct{}

func (nopObserver) OnStart(config.Options) {}
func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration) {}
func (nopObserver) OnFileDone(int, int, domain.Analysis, time.Duration) {}
func (nopObserver) OnProgress(float64, string) {}

func observerOr(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}
	return obs
}

// 分析阶段占整体进度的前 90%，改名阶段占剩余部分。
const analyzeShare = 90.0

func analyzePercent(done, total int) float64 {
	if total <= 0 {
		return analyzeShare
	}
	return analyzeShare * float64(done) / float64(total)
}

func renamePercent(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return analyzeShare + (100-analyzeShare)*float64(done)/float64(total)
}
