package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/nameback/internal/domain"
)

func TestParseJSON(t *testing.T) {
	raw := []byte(`[{
		"SourceFile": "/p/IMG_4312.jpg",
		"Title": "Quarterly Sales Report Q3 2023",
		"Subject": ["sales", "q3"],
		"Author": "Canon MX490",
		"CreateDate": "2023:10:01 09:00:00",
		"GPSLatitude": "47 deg 36' 22.32\" N",
		"GPSLatitudeRef": "North",
		"ImageWidth": 4032,
		"Album": 1999
	}]`)

	m, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Sales Report Q3 2023", m.Title)
	assert.Equal(t, "sales, q3", m.Subject)
	assert.Equal(t, "Canon MX490", m.Author)
	assert.Equal(t, "2023:10:01 09:00:00", m.CreateDate)
	assert.Equal(t, `47 deg 36' 22.32" N`, m.GPSLatitude)
	assert.Equal(t, "1999", m.Album)
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte("not json"))
	assert.Error(t, err)
	_, err = ParseJSON([]byte("[]"))
	assert.Error(t, err)
}

type stubProber struct {
	m   domain.Metadata
	err error
	n   int
}

func (s *stubProber) Probe(context.Context, string) (domain.Metadata, error) {
	s.n++
	return s.m, s.err
}

func TestChain(t *testing.T) {
	failing := &stubProber{err: errors.New("boom")}
	ok := &stubProber{m: domain.Metadata{Title: "Dinner"}}
	never := &stubProber{m: domain.Metadata{Title: "unused"}}

	m, err := Chain{failing, ok, never}.Probe(context.Background(), "/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Dinner", m.Title)
	assert.Equal(t, 0, never.n)

	m, err = Chain{failing}.Probe(context.Background(), "/x.jpg")
	assert.Error(t, err)
	assert.True(t, m.IsEmpty())
}

func TestNativeProber_UnsupportedAndInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := NativeProber{}.Probe(context.Background(), filepath.Join(dir, "a.pdf"))
	assert.ErrorIs(t, err, ErrUnsupported)

	p := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(p, []byte("not a jpeg"), 0o644))
	_, err = NativeProber{}.Probe(context.Background(), p)
	assert.Error(t, err)
}
