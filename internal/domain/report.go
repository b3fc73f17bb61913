package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	FileStatusRenamed   = "renamed"
	FileStatusPlanned   = "planned"
	FileStatusSkipped   = "skipped"
	FileStatusFailed    = "failed"
	FileStatusUnchanged = "unchanged"
)

const (
	ErrCodeNoCandidate       = "no_candidate"
	ErrCodeUnknownCategory   = "unknown_category"
	ErrCodeTargetConflict    = "target_conflict"
	ErrCodeRenameFailed      = "rename_failed"
	ErrCodeDirUnreadable     = "dir_unreadable"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	Dir    string `json:"dir"`
	DryRun bool   `json:"dry_run"`
	// Batch 是本次改名写入撤销历史的批次 id；dry-run 或没有成功改名时为空。
	Batch string `json:"batch,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Files   []FileReport  `json:"files"`
}

type ReportSummary struct {
	Renamed   int `json:"renamed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Unchanged int `json:"unchanged"`
}

type FileReport struct {
	Path     string  `json:"path"`
	Category string  `json:"category"`
	Proposed string  `json:"proposed,omitempty"`
	Source   string  `json:"source,omitempty"`
	Score    float64 `json:"score,omitempty"`
	Cached   bool    `json:"cached,omitempty"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) files 稳定排序：按 path 字典序
// 3) summary 由 files 计算得出；planned（dry-run）计入 renamed
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Files, func(i, j int) bool {
		return r.Files[i].Path < r.Files[j].Path
	})

	var s ReportSummary
	for _, f := range r.Files {
		switch f.Status {
		case FileStatusRenamed, FileStatusPlanned:
			s.Renamed++
		case FileStatusSkipped:
			s.Skipped++
		case FileStatusFailed:
			s.Failed++
		case FileStatusUnchanged:
			s.Unchanged++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性：files 为空时输出 [] 而不是 null。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Files == nil {
		a.Files = []FileReport{}
	}
	return json.Marshal(a)
}
