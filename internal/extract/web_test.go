package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLTitle(t *testing.T) {
	page := `<html><head><meta charset="utf-8"><title>Release Notes &amp; Changelog - YouTube</title></head><body></body></html>`
	got, ok, err := HTMLTitle(strings.NewReader(page), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Release_Notes_Changelog", got)
}

func TestHTMLTitle_MetaDescriptionFallback(t *testing.T) {
	page := `<html><head><meta name="Description" content="Hiking trip photo gallery"></head></html>`
	got, ok, err := HTMLTitle(strings.NewReader(page), "text/html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hiking_trip_photo_gallery", got)

	_, ok, err = HTMLTitle(strings.NewReader(`<html><body>nothing</body></html>`), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTMLTitle_ContentTypeCharset(t *testing.T) {
	// "Caf\xe9" 是 latin-1 编码的 "Café"。
	page := "<html><head><title>Caf\xe9 Menu</title></head></html>"
	got, ok, err := HTMLTitle(strings.NewReader(page), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Café_Menu", got)
}

func TestCleanHTMLTitle(t *testing.T) {
	assert.Equal(t, "Go_Programming_Language", CleanHTMLTitle("Go (Programming Language) - Wikipedia"))
	assert.Equal(t, "A_B", CleanHTMLTitle("A <b>B</b>"))
	assert.Equal(t, "v1-2_notes", CleanHTMLTitle("v1-2 notes | Twitter"))
}

func TestWeb_Extract(t *testing.T) {
	p := filepath.Join(t.TempDir(), "saved.html")
	require.NoError(t, os.WriteFile(p, []byte("<title>Saved Article</title>"), 0o644))
	got, ok, err := Web{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Saved_Article", got)
}
