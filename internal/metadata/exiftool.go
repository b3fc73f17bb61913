package metadata

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/barasher/go-exiftool"

	"github.com/John-Robertt/nameback/internal/domain"
)

// ExiftoolProber 通过常驻的 exiftool 进程（-stay_open）读取元数据。
//
// 约束：
// - 进程首次使用时启动；启动失败后本批次改用一次性 `exiftool -json` 调用
// - exiftool 进程不支持并发请求：Probe 在同一把锁内串行执行
type ExiftoolProber struct {
	Bin string // 为空时使用 PATH 中的 exiftool

	mu      sync.Mutex
	et      *exiftool.Exiftool
	started bool
	initErr error
}

func NewExiftoolProber() *ExiftoolProber {
	return &ExiftoolProber{Bin: "exiftool"}
}

func (p *ExiftoolProber) Probe(ctx context.Context, path string) (domain.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return domain.Metadata{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.started = true
		opts := []func(*exiftool.Exiftool) error{}
		if p.Bin != "" && p.Bin != "exiftool" {
			opts = append(opts, exiftool.SetExiftoolBinaryPath(p.Bin))
		}
		p.et, p.initErr = exiftool.NewExiftool(opts...)
	}
	if p.et == nil {
		return p.probeOnce(ctx, path)
	}

	res := p.et.ExtractMetadata(path)
	if len(res) == 0 {
		return domain.Metadata{}, fmt.Errorf("exiftool 无输出：%q", path)
	}
	if res[0].Err != nil {
		return domain.Metadata{}, fmt.Errorf("exiftool 读取失败：%q：%w", path, res[0].Err)
	}
	return FromFields(res[0].Fields), nil
}

// probeOnce 执行一次性的 `exiftool -json <path>`。
func (p *ExiftoolProber) probeOnce(ctx context.Context, path string) (domain.Metadata, error) {
	bin := p.Bin
	if bin == "" {
		bin = "exiftool"
	}
	if _, err := exec.LookPath(bin); err != nil {
		if p.initErr != nil {
			return domain.Metadata{}, fmt.Errorf("exiftool 不可用：%w", p.initErr)
		}
		return domain.Metadata{}, fmt.Errorf("exiftool 不可用：%w", err)
	}
	out, err := exec.CommandContext(ctx, bin, "-json", path).Output()
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("exiftool 执行失败：%q：%w", path, err)
	}
	return ParseJSON(out)
}

// Close 结束常驻进程。
func (p *ExiftoolProber) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.et == nil {
		return nil
	}
	err := p.et.Close()
	p.et = nil
	return err
}
