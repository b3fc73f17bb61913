package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/John-Robertt/nameback/internal/infra/fsx"
)

const (
	// 小于该大小的文件整体参与哈希；否则只取 size + 首尾各 64 KiB。
	wholeFileLimit = 1 << 20
	edgeChunk      = 64 << 10
)

// Entry 是单个文件的缓存记录。
//
// ProposedName 是单文件管线的输出（富化后的基础名），不含系列编号与冲突后缀。
type Entry struct {
	ContentHash  string `json:"file_hash"`
	Size         int64  `json:"file_size"`
	ModTime      int64  `json:"modified_time"`
	ProposedName string `json:"proposed_name,omitempty"`
	Category     string `json:"category"`
	Settings     string `json:"settings"`
	CachedAt     int64  `json:"cache_time"`
}

// Store 是持久化的元数据缓存（单个 JSON 文件，key 为绝对路径）。
//
// 约束：
// - 批次开始时 Open 一次，结束时 Save 一次；批次内 Lookup 只读
// - ReadOnly=true 时 Put/Save/Clear 返回 ErrReadOnly
// - 并发安全
type Store struct {
	Path     string
	ReadOnly bool

	mu      sync.RWMutex
	entries map[string]Entry
	dirty   bool
}

var ErrReadOnly = errors.New("cache: read-only")

// Stats 是缓存概况。
type Stats struct {
	Entries int
	Bytes   int64
}

// Open 读取缓存文件；文件不存在时返回空缓存。
// 文件损坏时同样返回可用的空缓存，并附带解析错误供上层记录。
func Open(path string, readOnly bool) (*Store, error) {
	s := &Store{
		Path:     filepath.Clean(strings.TrimSpace(path)),
		ReadOnly: readOnly,
		entries:  map[string]Entry{},
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(b, &s.entries); err != nil {
		s.entries = map[string]Entry{}
		return s, fmt.Errorf("缓存文件损坏（已忽略）：%w", err)
	}
	if s.entries == nil {
		s.entries = map[string]Entry{}
	}
	return s, nil
}

// Lookup 返回 path 的有效缓存记录。
//
// 有效条件：settings 一致，且 (size, mtime) 一致；若 (size, mtime) 变化则比较内容哈希。
func (s *Store) Lookup(path string, size int64, mod time.Time, settings string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[path]
	s.mu.RUnlock()
	if !ok || e.Settings != settings {
		return Entry{}, false
	}
	if e.Size == size && e.ModTime == mod.Unix() {
		return e, true
	}
	h, err := ContentHash(path)
	if err != nil || h != e.ContentHash {
		return Entry{}, false
	}
	return e, true
}

// Put 记录 path 的分析结果（计算内容哈希）。
func (s *Store) Put(path string, size int64, mod time.Time, category, proposed, settings string) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	h, err := ContentHash(path)
	if err != nil {
		return err
	}
	e := Entry{
		ContentHash:  h,
		Size:         size,
		ModTime:      mod.Unix(),
		ProposedName: proposed,
		Category:     category,
		Settings:     settings,
		CachedAt:     time.Now().Unix(),
	}
	s.mu.Lock()
	s.entries[path] = e
	s.dirty = true
	s.mu.Unlock()
	return nil
}

// Prune 删除 root 目录树下、但不在 keep 中的记录（文件已被删除或改名）。返回删除条数。
func (s *Store) Prune(root string, keep map[string]struct{}) int {
	prefix := filepath.Clean(root) + string(filepath.Separator)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for p := range s.entries {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if _, ok := keep[p]; ok {
			continue
		}
		delete(s.entries, p)
		n++
	}
	if n > 0 {
		s.dirty = true
	}
	return n
}

// Save 在有改动时原子写回缓存文件。
func (s *Store) Save() error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := fsx.WriteFileAtomic(filepath.Dir(s.Path), filepath.Base(s.Path), b); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Clear 清空缓存并删除缓存文件。
func (s *Store) Clear() error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]Entry{}
	s.dirty = false
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Stats 返回条目数与缓存文件大小。
func (s *Store) Stats() Stats {
	s.mu.RLock()
	st := Stats{Entries: len(s.entries)}
	s.mu.RUnlock()
	if fi, err := os.Stat(s.Path); err == nil {
		st.Bytes = fi.Size()
	}
	return st
}

// ContentHash 计算文件的 64 位 xxhash（十六进制）。
//
// 小于 1 MiB 的文件整体哈希；否则哈希 size + 首 64 KiB + 尾 64 KiB。
// 只用于判断缓存是否失效，不能用于去重。
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", err
	}

	h := xxhash.New()
	size := fi.Size()
	if size < wholeFileLimit {
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		return fmt.Sprintf("%016x", h.Sum64()), nil
	}

	_, _ = fmt.Fprintf(h, "%d|", size)
	buf := make([]byte, edgeChunk)
	if _, err := io.ReadFull(f, buf); err != nil {
		return "", err
	}
	_, _ = h.Write(buf)
	if _, err := f.ReadAt(buf, size-edgeChunk); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	_, _ = h.Write(buf)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
