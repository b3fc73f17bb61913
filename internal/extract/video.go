package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/infra/imgx"
	"github.com/John-Robertt/nameback/internal/score"
)

var (
	// MultiFrameOffsets 是多帧模式下的抽帧时间点。
	MultiFrameOffsets = []time.Duration{time.Second, 5 * time.Second, 10 * time.Second}
	singleFrameOffset = []time.Duration{time.Second}
)

// FrameGrabber 把视频在 at 时刻的一帧写为 PNG 文件 out。
type FrameGrabber interface {
	Grab(ctx context.Context, video string, at time.Duration, out string) error
}

// FFmpeg 通过 ffmpeg 抽帧。
type FFmpeg struct {
	Bin    string
	Runner Runner
}

func (f FFmpeg) Grab(ctx context.Context, video string, at time.Duration, out string) error {
	bin := f.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	r := runnerOr(f.Runner)
	if _, err := r.LookPath(bin); err != nil {
		return err
	}
	// -ss 放在 -i 之前：按关键帧快速定位。
	_, err := r.Run(ctx, bin, "-hide_banner", "-loglevel", "error",
		"-ss", formatOffset(at), "-i", video, "-vframes", "1", "-f", "image2", out, "-y")
	if err != nil {
		return err
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("ffmpeg 未生成帧文件：%w", err)
	}
	return nil
}

func formatOffset(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// Video 抽帧后做 OCR；多帧模式下每帧结果作为 OcrVideo 候选打分，取最高者。
type Video struct {
	Grabber    FrameGrabber
	OCR        *OCR
	Multiframe bool
	Logger     *slog.Logger
}

func (Video) Name() string { return "ocr_video" }

func (v Video) Extract(ctx context.Context, path string) (string, bool, error) {
	if v.Grabber == nil || v.OCR == nil {
		return "", false, fmt.Errorf("%w：视频 OCR 未配置", ErrToolMissing)
	}
	offsets := singleFrameOffset
	if v.Multiframe {
		offsets = MultiFrameOffsets
	}

	var (
		cands   []domain.Candidate
		lastErr error
	)
	for _, at := range offsets {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		text, ok, err := v.frameText(ctx, path, at)
		if err != nil {
			lastErr = err
			if v.Logger != nil {
				v.Logger.Debug("video frame failed", "path", path, "at", at.String(), "err", err)
			}
			continue
		}
		if ok {
			cands = append(cands, domain.Candidate{Text: text, Source: domain.SourceOcrVideo})
		}
	}
	if len(cands) == 0 {
		return "", false, lastErr
	}
	if !v.Multiframe {
		return cands[0].Text, true, nil
	}
	best, ok := score.Select(score.Rank(cands))
	if !ok {
		return "", false, nil
	}
	return best.Text, true, nil
}

func (v Video) frameText(ctx context.Context, path string, at time.Duration) (string, bool, error) {
	frame, err := imgx.TempName(v.OCR.TmpDir, "nameback-frame-", ".png")
	if err != nil {
		return "", false, err
	}
	defer os.Remove(frame)

	if err := v.Grabber.Grab(ctx, path, at, frame); err != nil {
		return "", false, err
	}
	return v.OCR.Recognize(ctx, frame)
}
