//go:build !gosseract

package extract

// DefaultEngine 默认调用 tesseract 命令行。
func DefaultEngine(r Runner) Engine { return Tesseract{Runner: r} }
