package metadata

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/John-Robertt/nameback/internal/domain"
)

// NativeProber 用内置 EXIF 解码器读取 JPEG/TIFF；用于 exiftool 不可用的场景。
//
// 只覆盖 DateTimeOriginal、ImageDescription、Artist 与 GPS。
type NativeProber struct{}

var nativeExts = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".tif": {}, ".tiff": {}}

func (NativeProber) Probe(ctx context.Context, path string) (domain.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return domain.Metadata{}, err
	}
	if _, ok := nativeExts[strings.ToLower(filepath.Ext(path))]; !ok {
		return domain.Metadata{}, ErrUnsupported
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return domain.Metadata{}, err
	}

	var m domain.Metadata
	m.DateTimeOriginal = tagString(x, exif.DateTimeOriginal)
	m.Description = tagString(x, exif.ImageDescription)
	m.Author = tagString(x, exif.Artist)

	if lat, lon, err := x.LatLong(); err == nil && !math.IsNaN(lat) && !math.IsNaN(lon) {
		m.GPSLatitude = strconv.FormatFloat(math.Abs(lat), 'f', 6, 64)
		m.GPSLongitude = strconv.FormatFloat(math.Abs(lon), 'f', 6, 64)
		m.GPSLatitudeRef, m.GPSLongitudeRef = "N", "E"
		if lat < 0 {
			m.GPSLatitudeRef = "S"
		}
		if lon < 0 {
			m.GPSLongitudeRef = "W"
		}
	}
	return m, nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
