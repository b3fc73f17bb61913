package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tQuarterly\n" +
	"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t80\tReport\n" +
	"5\t1\t1\t1\t2\t1\t0\t0\t10\t10\t70\tDraft\n" +
	"5\t1\t1\t1\t2\t2\t0\t0\t10\t10\t-1\t \n"

func TestParseTSV(t *testing.T) {
	rec := ParseTSV(sampleTSV)
	assert.Equal(t, "Quarterly Report\nDraft", rec.Text)
	assert.InDelta(t, 80.0, rec.Confidence, 0.001)

	assert.Equal(t, Recognition{}, ParseTSV(""))
}

func TestTesseract_Recognize(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"tesseract": sampleTSV}}
	rec, err := Tesseract{Runner: r}.Recognize(context.Background(), "/tmp/a.png", "eng")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report\nDraft", rec.Text)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "tesseract /tmp/a.png stdout -l eng tsv", r.calls[0])

	_, err = Tesseract{Runner: &fakeRunner{missing: map[string]bool{"tesseract": true}}}.Recognize(context.Background(), "/tmp/a.png", "eng")
	assert.ErrorIs(t, err, ErrToolMissing)
}

func writeFakeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(p, []byte("not really a png"), 0o644))
	return p
}

func TestOCR_PicksHighestConfidence(t *testing.T) {
	eng := &fakeEngine{byLang: map[string]Recognition{
		"chi_tra": {Text: "garbled glyphs here", Confidence: 30},
		"chi_sim": {Text: "x", Confidence: 99},
		"eng":     {Text: "  Quarterly   Sales\nReport  ", Confidence: 88},
	}}
	o := &OCR{Engine: eng}
	got, ok, err := o.Recognize(context.Background(), writeFakeImage(t))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Quarterly Sales Report", got)
}

func TestOCR_TieBrokenByLength(t *testing.T) {
	eng := &fakeEngine{byLang: map[string]Recognition{
		"chi_tra": {Text: "Short text", Confidence: 50},
		"chi_sim": {Text: "A somewhat longer text", Confidence: 50},
		"eng":     {Text: "Mid length text", Confidence: 50},
	}}
	o := &OCR{Engine: eng}
	got, ok, err := o.Recognize(context.Background(), writeFakeImage(t))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A somewhat longer text", got)
}

func TestOCR_TruncatesAndRejectsShort(t *testing.T) {
	long := strings.Repeat("abcdefghij ", 20)
	o := &OCR{Engine: &fakeEngine{byLang: map[string]Recognition{"eng": {Text: long}}}, Languages: []string{"eng"}}
	got, ok, err := o.Recognize(context.Background(), writeFakeImage(t))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 80, runeLen(got))

	full, ok, err := o.RecognizeFull(context.Background(), writeFakeImage(t))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, CleanText(long), full)

	o = &OCR{Engine: &fakeEngine{byLang: map[string]Recognition{"eng": {Text: "tiny"}}}, Languages: []string{"eng"}}
	_, ok, err = o.Recognize(context.Background(), writeFakeImage(t))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOCR_NoEngine(t *testing.T) {
	_, ok, err := (&OCR{}).Recognize(context.Background(), "/x.png")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrToolMissing)
}

func TestVideo_Multiframe(t *testing.T) {
	g := &fakeGrabber{}
	eng := &fakeEngine{seq: []Recognition{
		{Text: "blurry frame 1234"},
		{Text: "Conference Keynote Opening"},
		{Text: "ok"},
	}}
	v := Video{Grabber: g, OCR: &OCR{Engine: eng, Languages: []string{"eng"}, TmpDir: t.TempDir()}, Multiframe: true}

	got, ok, err := v.Extract(context.Background(), "/videos/talk.mp4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Conference Keynote Opening", got)
	assert.Equal(t, MultiFrameOffsets, g.offsets)
}

func TestVideo_SingleFrame(t *testing.T) {
	g := &fakeGrabber{}
	eng := &fakeEngine{seq: []Recognition{{Text: "Opening Title Card"}}}
	v := Video{Grabber: g, OCR: &OCR{Engine: eng, Languages: []string{"eng"}, TmpDir: t.TempDir()}}

	got, ok, err := v.Extract(context.Background(), "/videos/clip.mov")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Opening Title Card", got)
	assert.Equal(t, []time.Duration{time.Second}, g.offsets)
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "00:00:01", formatOffset(time.Second))
	assert.Equal(t, "01:01:05", formatOffset(time.Hour+time.Minute+5*time.Second))
}

// partialRunner 模拟转换工具写出半个文件后失败。
type partialRunner struct{ fakeRunner }

func (p *partialRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	out := args[len(args)-1]
	_ = os.WriteFile(out, []byte("\x89PNG partial"), 0o644)
	return nil, fmt.Errorf("%s: 转换中断", name)
}

func TestConvertHEIC_RemovesPartialOutput(t *testing.T) {
	tmp := t.TempDir()
	o := &OCR{Runner: &partialRunner{}, TmpDir: tmp}

	_, err := o.convertHEIC(context.Background(), "/photos/IMG_0001.heic")
	require.Error(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "转换失败后不应留下临时 PNG")
}
