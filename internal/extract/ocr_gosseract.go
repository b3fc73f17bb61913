//go:build gosseract

package extract

import (
	"context"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract 使用进程内的 tesseract 绑定（需要 cgo 与 libtesseract）。
type Gosseract struct{}

func (Gosseract) Recognize(ctx context.Context, imagePath, lang string) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return Recognition{}, err
	}
	if err := client.SetImage(imagePath); err != nil {
		return Recognition{}, err
	}
	text, err := client.Text()
	if err != nil {
		return Recognition{}, err
	}

	rec := Recognition{Text: text}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += b.Confidence
		}
		rec.Confidence = sum / float64(len(boxes))
	}
	return rec, nil
}

// DefaultEngine 在 gosseract 构建下使用进程内引擎。
func DefaultEngine(Runner) Engine { return Gosseract{} }
