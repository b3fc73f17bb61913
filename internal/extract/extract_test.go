package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// fakeRunner 记录调用并按命令名返回预设输出。
type fakeRunner struct {
	mu      sync.Mutex
	missing map[string]bool
	outputs map[string]string
	calls   []string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", fmt.Errorf("%w：%s", ErrToolMissing, name)
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	return []byte(f.outputs[name]), nil
}

// fakeEngine 按调用顺序返回识别结果；byLang 优先。
type fakeEngine struct {
	mu     sync.Mutex
	byLang map[string]Recognition
	seq    []Recognition
	n      int
}

func (f *fakeEngine) Recognize(_ context.Context, _ string, lang string) (Recognition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byLang[lang]; ok {
		return r, nil
	}
	if f.n >= len(f.seq) {
		return Recognition{}, nil
	}
	r := f.seq[f.n]
	f.n++
	return r, nil
}

// fakeGrabber 写出一个非图片的占位帧文件。
type fakeGrabber struct {
	offsets []time.Duration
}

func (g *fakeGrabber) Grab(_ context.Context, _ string, at time.Duration, out string) error {
	g.offsets = append(g.offsets, at)
	return os.WriteFile(out, []byte("frame"), 0o644)
}
