package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	old := lookPath
	t.Cleanup(func() { lookPath = old })
	set := map[string]bool{}
	for _, a := range available {
		set[a] = true
	}
	lookPath = func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestNeeds_ByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "clip.MP4"))
	touch(t, filepath.Join(dir, "docs", "scan.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))

	got, err := Needs(dir)
	require.NoError(t, err)
	assert.True(t, got["exiftool"])
	assert.True(t, got["ffmpeg"])
	assert.True(t, got["tesseract"])
	assert.True(t, got["pdftoppm"])
	assert.False(t, got["7z"])
	assert.False(t, got["unrar"])
}

func TestNeeds_RespectsDepth(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "b", "shallow.rar"))
	touch(t, filepath.Join(dir, "a", "b", "c", "deep.7z"))

	got, err := Needs(dir)
	require.NoError(t, err)
	assert.True(t, got["unrar"], "深度 3 以内的文件应参与判断")
	assert.False(t, got["7z"], "超过深度 3 的文件不应参与判断")
}

func TestNeeds_StopsAfterMaxFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < MaxFiles; i++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("a%04d.txt", i)))
	}
	// WalkDir 按字典序遍历，z 开头的文件排在最后。
	touch(t, filepath.Join(dir, "zzz.mkv"))

	got, err := Needs(dir)
	require.NoError(t, err)
	assert.False(t, got["ffmpeg"])
}

func TestNeeds_MissingDir(t *testing.T) {
	_, err := Needs(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCheck_AndMissing(t *testing.T) {
	stubLookPath(t, "tesseract", "convert")

	sts := Check(map[string]bool{"tesseract": true, "ffmpeg": true, "imagemagick": true})
	require.Len(t, sts, len(Tools))

	byName := map[string]Status{}
	for _, s := range sts {
		byName[s.Tool.Name] = s
	}
	assert.False(t, byName["exiftool"].Found)
	assert.True(t, byName["exiftool"].Needed)
	assert.True(t, byName["imagemagick"].Found, "convert 可替代 magick")
	assert.Equal(t, "/usr/bin/convert", byName["imagemagick"].Path)
	assert.False(t, byName["7z"].Needed)

	err := MissingRequired(sts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolMissing))
	assert.Contains(t, err.Error(), "exiftool")
	assert.Equal(t, []string{"ffmpeg"}, MissingOptional(sts))
}

func TestCheck_AllPresent(t *testing.T) {
	stubLookPath(t, "exiftool", "tesseract", "ffmpeg", "pdftoppm", "magick", "7z", "unrar")
	sts := Check(nil)
	assert.NoError(t, MissingRequired(sts))
	assert.Empty(t, MissingOptional(sts))
}
