package naming

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Resolver 在每个目录内维护"名字 -> 占用者路径"的映射，保证批次内产出的名字不冲突。
//
// 约束：
// - 目录内已存在的条目在 Seed 时登记，占用者为其自身路径
// - 文件可以保留自己当前的名字；其它情况下冲突时追加 _1、_2 ...
// - 并发安全：Claim 的插入与追加后缀在同一把锁内完成
type Resolver struct {
	mu   sync.Mutex
	dirs map[string]map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{dirs: map[string]map[string]string{}}
}

// Seed 登记目录内已有的文件名。重复调用同一目录会合并。
func (r *Resolver) Seed(dir string, names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := r.dir(dir)
	for _, n := range names {
		if _, ok := used[n]; !ok {
			used[n] = filepath.Join(dir, n)
		}
	}
}

// Claim 为 owner 在 dir 中分配 base+ext（base 必须已清洗）。返回最终文件名。
func (r *Resolver) Claim(dir, owner, base, ext string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := r.dir(dir)
	name := base + ext
	for n := 1; ; n++ {
		holder, taken := used[name]
		if !taken || holder == owner {
			used[name] = owner
			return name
		}
		name = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
}

func (r *Resolver) dir(dir string) map[string]string {
	used, ok := r.dirs[dir]
	if !ok {
		used = map[string]string{}
		r.dirs[dir] = used
	}
	return used
}
