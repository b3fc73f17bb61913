// Package history 记录成功的改名操作，支持撤销。
//
// 约束：
// - 最新在前；超过上限时淘汰最旧的记录
// - 撤销不会覆盖任何文件：新路径缺失或原路径被占用时拒绝
// - 已撤销的记录保留，只标记 undone
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/nameback/internal/infra/fsx"
)

// DefaultMax 是默认保留的操作数。
const DefaultMax = 50

var (
	ErrNothingToUndo = errors.New("没有可撤销的操作")
	ErrAlreadyUndone = errors.New("该操作已撤销")
	ErrInvalidIndex  = errors.New("非法的操作序号")
)

// UndoConflictError 表示撤销时文件系统状态与记录不符。
type UndoConflictError struct {
	Path   string
	Reason string
}

func (e *UndoConflictError) Error() string {
	return fmt.Sprintf("无法撤销：%s（%q）", e.Reason, e.Path)
}

// Operation 是一次改名记录。
type Operation struct {
	ID           string `json:"id"`
	Batch        string `json:"batch"`
	OriginalPath string `json:"original_path"`
	NewPath      string `json:"new_path"`
	Timestamp    int64  `json:"timestamp"`
	Undone       bool   `json:"undone"`
}

type fileFormat struct {
	MaxHistory int         `json:"max_history"`
	Operations []Operation `json:"operations"`
}

// History 是有界的改名历史（并发安全）。
type History struct {
	path string
	max  int

	mu  sync.Mutex
	ops []Operation

	now    func() time.Time
	rename func(src, dst string) error
}

// Load 读取历史文件；不存在时返回空历史。max<=0 时使用 DefaultMax。
func Load(path string, max int) (*History, error) {
	if max <= 0 {
		max = DefaultMax
	}
	h := &History{path: filepath.Clean(path), max: max, now: time.Now, rename: fsx.RenameNoReplace}

	b, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, err
	}
	var f fileFormat
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("历史文件解析失败：%q：%w", h.path, err)
	}
	h.ops = f.Operations
	h.trim()
	return h, nil
}

// Path 返回历史文件路径。
func (h *History) Path() string { return h.path }

// NewBatch 生成新的批次 id。
func NewBatch() string { return uuid.NewString() }

// Add 记录一次成功的改名（调用方必须在改名成功之后调用）。
func (h *History) Add(batch, original, newPath string) Operation {
	op := Operation{
		ID:           uuid.NewString(),
		Batch:        batch,
		OriginalPath: original,
		NewPath:      newPath,
		Timestamp:    h.now().Unix(),
	}
	h.mu.Lock()
	h.ops = append([]Operation{op}, h.ops...)
	h.trim()
	h.mu.Unlock()
	return op
}

func (h *History) trim() {
	if len(h.ops) > h.max {
		h.ops = h.ops[:h.max]
	}
}

// Operations 返回当前记录的副本（最新在前）。
func (h *History) Operations() []Operation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Operation(nil), h.ops...)
}

// UndoLast 撤销最近一条未撤销的操作。
func (h *History) UndoLast() (Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.ops {
		if !h.ops[i].Undone {
			return h.undoLocked(i)
		}
	}
	return Operation{}, ErrNothingToUndo
}

// UndoAt 撤销第 i 条操作（0 为最新）。
func (h *History) UndoAt(i int) (Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.ops) {
		return Operation{}, ErrInvalidIndex
	}
	return h.undoLocked(i)
}

// LastBatch 返回最近一条未撤销操作所属的批次；没有时返回空串。
func (h *History) LastBatch() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, op := range h.ops {
		if !op.Undone {
			return op.Batch
		}
	}
	return ""
}

// UndoBatch 撤销某批次内所有未撤销的操作（按最新在前的顺序）。
//
// 单条失败不会中断其余操作；返回成功撤销的记录与逐条错误。
func (h *History) UndoBatch(batch string) ([]Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var done []Operation
	var errs []error
	for i := range h.ops {
		op := h.ops[i]
		if op.Batch != batch || op.Undone {
			continue
		}
		u, err := h.undoLocked(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		done = append(done, u)
	}
	if len(done) == 0 && len(errs) == 0 {
		return nil, ErrNothingToUndo
	}
	return done, errors.Join(errs...)
}

func (h *History) undoLocked(i int) (Operation, error) {
	op := h.ops[i]
	if op.Undone {
		return op, ErrAlreadyUndone
	}
	if _, err := os.Lstat(op.NewPath); err != nil {
		return op, &UndoConflictError{Path: op.NewPath, Reason: "改名后的文件已不存在"}
	}
	if _, err := os.Lstat(op.OriginalPath); err == nil {
		return op, &UndoConflictError{Path: op.OriginalPath, Reason: "原路径已被占用"}
	}
	if err := h.rename(op.NewPath, op.OriginalPath); err != nil {
		return op, err
	}
	h.ops[i].Undone = true
	return h.ops[i], nil
}

// Stats 是历史概况。
type Stats struct {
	Total    int
	Undoable int
	Max      int
}

func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Stats{Total: len(h.ops), Max: h.max}
	for _, op := range h.ops {
		if !op.Undone {
			st.Undoable++
		}
	}
	return st
}

// Clear 清空内存中的记录（需 Save 落盘）。
func (h *History) Clear() {
	h.mu.Lock()
	h.ops = nil
	h.mu.Unlock()
}

// Save 原子写回历史文件。
func (h *History) Save() error {
	h.mu.Lock()
	f := fileFormat{MaxHistory: h.max, Operations: h.ops}
	if f.Operations == nil {
		f.Operations = []Operation{}
	}
	b, err := json.MarshalIndent(f, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(h.path), filepath.Base(h.path), b)
}
