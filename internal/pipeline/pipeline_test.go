package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/nameback/internal/domain"
	"github.com/John-Robertt/nameback/internal/enrich"
	"github.com/John-Robertt/nameback/internal/hint"
	"github.com/John-Robertt/nameback/internal/infra/geocode"
)

type stubProber struct {
	m   domain.Metadata
	err error
}

func (s stubProber) Probe(context.Context, string) (domain.Metadata, error) { return s.m, s.err }

type stubExtractor struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(context.Context, string) (string, bool, error) {
	s.calls++
	if s.err != nil {
		return "", false, s.err
	}
	return s.text, s.text != "", nil
}

// 目录 tmp/downloads 都是宽泛名，不产生目录上下文候选。
const dir = "/tmp/downloads/"

func entry(name string) domain.PathEntry {
	return domain.NewPathEntry(dir+name, 1, time.Unix(0, 0))
}

func newAnalyzer(cat domain.Category, m domain.Metadata, ex Extractors) *Analyzer {
	return &Analyzer{
		Prober:     stubProber{m: m},
		Extractors: ex,
		classify:   func(string) (domain.Category, error) { return cat, nil },
	}
}

func TestAnalyze_MetadataWinsOverOCR(t *testing.T) {
	ocr := &stubExtractor{name: "ocr_image", text: "IMG 4312"}
	a := newAnalyzer(domain.CategoryImage, domain.Metadata{Title: "Quarterly Sales Report Q3 2023"}, Extractors{Image: ocr})

	got := a.Analyze(context.Background(), entry("IMG_4312.jpg"))
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourceMetadata, got.Chosen.Source)
	assert.Equal(t, "Quarterly Sales Report Q3 2023", got.Base)
	assert.Greater(t, got.Chosen.Score, 8.0)
	assert.Equal(t, domain.CategoryImage, got.Entry.Category)
	assert.Zero(t, ocr.calls, "有可用标题时不应做 OCR")
}

func TestAnalyze_ImageOCRWhenNoMetadata(t *testing.T) {
	ocr := &stubExtractor{name: "ocr_image", text: "Whiteboard Sprint Planning Notes"}
	a := newAnalyzer(domain.CategoryImage, domain.Metadata{Author: "Canon MX490"}, Extractors{Image: ocr})

	got := a.Analyze(context.Background(), entry("IMG_4312.jpg"))
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourceOcrImage, got.Chosen.Source)
	assert.Equal(t, "Whiteboard Sprint Planning Notes", got.Base)
	assert.Equal(t, 1, ocr.calls)
}

func TestAnalyze_ScannerAuthorRejectedPDFTextWins(t *testing.T) {
	pdf := &stubExtractor{name: "pdf", text: "Invoice #4571 — Acme Corp"}
	a := newAnalyzer(domain.CategoryDocument, domain.Metadata{Author: "Canon MX490"}, Extractors{PDF: pdf})

	got := a.Analyze(context.Background(), entry("doc.pdf"))
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourcePdfText, got.Chosen.Source)
	assert.Equal(t, "Invoice #4571 — Acme Corp", got.Base)
	for _, c := range got.Candidates {
		assert.NotEqual(t, "Canon MX490", c.Text)
	}
}

func TestAnalyze_PDFSkippedWhenTitleUseful(t *testing.T) {
	pdf := &stubExtractor{name: "pdf", text: "ignored"}
	a := newAnalyzer(domain.CategoryDocument, domain.Metadata{Title: "Lease Agreement 2024"}, Extractors{PDF: pdf})

	got := a.Analyze(context.Background(), entry("doc.pdf"))
	assert.Equal(t, "Lease Agreement 2024", got.Base)
	assert.Zero(t, pdf.calls)
}

func TestAnalyze_InstallerStemFallsBackToDate(t *testing.T) {
	a := newAnalyzer(domain.CategoryDocument, domain.Metadata{}, Extractors{PDF: &stubExtractor{name: "pdf"}})

	got := a.Analyze(context.Background(), entry("Adobe_InDesign_CS6_(Windows)_2021-08-23.pdf"))
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourceFallback, got.Chosen.Source)
	assert.Equal(t, "2021-08-23", got.Base)
}

func TestAnalyze_NoCandidate(t *testing.T) {
	a := newAnalyzer(domain.CategoryUnknown, domain.Metadata{}, Extractors{})
	got := a.Analyze(context.Background(), entry("x1.bin"))
	assert.Nil(t, got.Chosen)
	assert.Empty(t, got.Base)
}

func TestAnalyze_ExtractorErrorIsSwallowed(t *testing.T) {
	txt := &stubExtractor{name: "text", err: errors.New("boom")}
	a := newAnalyzer(domain.CategoryDocument, domain.Metadata{}, Extractors{Text: txt})

	got := a.Analyze(context.Background(), entry("meeting_notes_budget.txt"))
	assert.Equal(t, 1, txt.calls)
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourceFilenameAnalysis, got.Chosen.Source)
}

func TestAnalyze_ProbeErrorYieldsEmptyMetadata(t *testing.T) {
	a := &Analyzer{
		Prober:   stubProber{m: domain.Metadata{Title: "should not leak"}, err: errors.New("exiftool missing")},
		classify: func(string) (domain.Category, error) { return domain.CategoryImage, errors.New("read failed") },
	}
	got := a.Analyze(context.Background(), entry("holiday_beach_sunset.jpg"))
	assert.True(t, got.Metadata.IsEmpty())
	assert.Equal(t, "holiday_beach_sunset", got.Base)
}

func TestAnalyze_VideoGating(t *testing.T) {
	video := &stubExtractor{name: "ocr_video", text: "Conference Keynote Opening"}
	a := newAnalyzer(domain.CategoryVideo, domain.Metadata{}, Extractors{Video: video})
	got := a.Analyze(context.Background(), entry("clip.mp4"))
	assert.Equal(t, "Conference Keynote Opening", got.Base)
	assert.Equal(t, domain.SourceOcrVideo, got.Chosen.Source)

	video = &stubExtractor{name: "ocr_video", text: "unused"}
	a = newAnalyzer(domain.CategoryVideo, domain.Metadata{Title: "Wedding Ceremony Highlights"}, Extractors{Video: video})
	got = a.Analyze(context.Background(), entry("clip.mp4"))
	assert.Equal(t, "Wedding Ceremony Highlights", got.Base)
	assert.Zero(t, video.calls)
}

func TestAnalyze_FormatExtractorsUseMetadataSource(t *testing.T) {
	cases := []struct {
		cat  domain.Category
		ex   Extractors
		name string
	}{
		{domain.CategoryEmail, Extractors{Email: &stubExtractor{name: "email", text: "Project_kickoff_from_Jane_Doe"}}, "message.eml"},
		{domain.CategoryWeb, Extractors{Web: &stubExtractor{name: "web", text: "Release_Notes_Changelog"}}, "page.html"},
		{domain.CategoryArchive, Extractors{Archive: &stubExtractor{name: "archive", text: "vacation_photos"}}, "bundle.zip"},
		{domain.CategorySourceCode, Extractors{Source: &stubExtractor{name: "source", text: "Image resizing utilities"}}, "main.py"},
	}
	for _, tc := range cases {
		a := newAnalyzer(tc.cat, domain.Metadata{}, tc.ex)
		got := a.Analyze(context.Background(), entry(tc.name))
		require.NotNil(t, got.Chosen, tc.cat)
		assert.Equal(t, domain.SourceMetadata, got.Chosen.Source, tc.cat)
	}
}

func TestAnalyze_AudioUsesTags(t *testing.T) {
	a := newAnalyzer(domain.CategoryAudio, domain.Metadata{Artist: "Miles Davis", Album: "Kind of Blue"}, Extractors{})
	got := a.Analyze(context.Background(), entry("track01.mp3"))
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourceMetadata, got.Chosen.Source)
	assert.Contains(t, []string{"Miles Davis", "Kind of Blue"}, got.Base)
}

func TestAnalyze_DirectoryContextCandidate(t *testing.T) {
	a := newAnalyzer(domain.CategoryImage, domain.Metadata{}, Extractors{})
	e := domain.NewPathEntry("/tmp/vacation photos/IMG_001.jpg", 1, time.Unix(0, 0))
	got := a.Analyze(context.Background(), e)
	require.NotNil(t, got.Chosen)
	assert.Equal(t, domain.SourceDirectoryContext, got.Chosen.Source)
	assert.Equal(t, "vacation photos", got.Base)
}

func TestAnalyze_LocationEnrichmentWithoutGeocoding(t *testing.T) {
	m := domain.Metadata{
		Title:           "Dinner",
		GPSLatitude:     "47.6062",
		GPSLatitudeRef:  "N",
		GPSLongitude:    "122.3321",
		GPSLongitudeRef: "W",
	}
	a := newAnalyzer(domain.CategoryImage, m, Extractors{})
	a.Enricher = enrich.Enricher{IncludeLocation: true, Geocode: false}

	got := a.Analyze(context.Background(), entry("IMG_0001.jpg"))
	assert.Equal(t, "Dinner_47.61N_122.33W", got.Base)
}

type stubGeocoder struct{}

func (stubGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return geocode.FormatAddress(geocode.Address{City: "Seattle", State: "Washington", CountryCode: "us"}), nil
}

func TestAnalyze_LocationAndTimestamp(t *testing.T) {
	m := domain.Metadata{
		Title:            "Dinner",
		DateTimeOriginal: "2023:10:15 19:30:00",
		GPSLatitude:      "47.6062",
		GPSLatitudeRef:   "N",
		GPSLongitude:     "122.3321",
		GPSLongitudeRef:  "W",
	}
	a := newAnalyzer(domain.CategoryImage, m, Extractors{})
	a.Enricher = enrich.Enricher{IncludeLocation: true, IncludeTimestamp: true, Geocode: true, Geocoder: stubGeocoder{}}

	got := a.Analyze(context.Background(), entry("IMG_0001.jpg"))
	assert.Equal(t, "Dinner_Seattle_WA_2023-10-15", got.Base)
}

func TestChoose(t *testing.T) {
	_, ok := Choose(nil, hint.StemResult{}, false)
	assert.False(t, ok)

	c, ok := Choose([]domain.Candidate{{Text: "x", Source: domain.SourceOcrImage}}, hint.StemResult{Text: "2021-08-23", DatesOnly: true}, true)
	require.True(t, ok)
	assert.Equal(t, domain.SourceFallback, c.Source)
	assert.Equal(t, "2021-08-23", c.Text)
}

func TestAnalyze_UnknownCategoryHasNoName(t *testing.T) {
	txt := &stubExtractor{name: "text", text: "Project Quarterly Notes"}
	a := newAnalyzer(domain.CategoryUnknown, domain.Metadata{Title: "Project Quarterly Notes"}, Extractors{Text: txt})

	got := a.Analyze(context.Background(), domain.NewPathEntry("/home/ana/Projects/project_quarterly_notes.xyz", 1, time.Unix(0, 0)))
	assert.Equal(t, domain.CategoryUnknown, got.Entry.Category)
	assert.Nil(t, got.Chosen)
	assert.Empty(t, got.Base)
	assert.Empty(t, got.Candidates, "未知类型不应产生原文件名或目录上下文候选")
	assert.Zero(t, txt.calls)
}

func TestAnalyze_ClassifyErrorIsUnknown(t *testing.T) {
	a := newAnalyzer(domain.CategoryUnknown, domain.Metadata{Title: "Dinner"}, Extractors{})
	a.classify = func(string) (domain.Category, error) { return domain.CategoryUnknown, errors.New("permission denied") }

	got := a.Analyze(context.Background(), entry("dinner_party_photos.jpg"))
	assert.Nil(t, got.Chosen)
	assert.Empty(t, got.Base)
}
