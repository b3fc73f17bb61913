package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	paths := []string{
		"/p/IMG_003.jpg", "/p/IMG_001.jpg", "/p/IMG_002.jpg",
		"/p/Scan (1).pdf", "/p/Scan (2).pdf",
		"/p/clip-7.mp4", "/p/clip-8.mp4", "/p/clip-10.mp4",
		"/q/IMG_001.jpg", "/q/IMG_002.jpg",
		"/p/notes.txt",
	}
	got := Detect(paths)
	require.Len(t, got, 2)

	assert.Equal(t, "IMG", got[0].Base)
	assert.Equal(t, Underscore, got[0].Pattern)
	assert.Equal(t, []Member{
		{Path: "/p/IMG_001.jpg", Index: 1},
		{Path: "/p/IMG_002.jpg", Index: 2},
		{Path: "/p/IMG_003.jpg", Index: 3},
	}, got[0].Members)

	assert.Equal(t, "clip", got[1].Base)
	assert.Equal(t, Hyphen, got[1].Pattern)
	assert.Equal(t, 10, got[1].Members[2].Index)
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 3, Series{Members: []Member{{Index: 1}, {Index: 99}}}.Width())
	assert.Equal(t, 4, Series{Members: []Member{{Index: 1}, {Index: 1200}}}.Width())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "trip_007", Underscore.Format("trip", 7, 3))
	assert.Equal(t, "trip (007)", Parentheses.Format("trip", 7, 3))
	assert.Equal(t, "trip-0007", Hyphen.Format("trip", 7, 4))
	assert.Equal(t, "trip 007", Space.Format("trip", 7, 3))
}

func TestRenumber(t *testing.T) {
	s := Series{Base: "IMG", Pattern: Underscore, Members: []Member{
		{Path: "a", Index: 1}, {Path: "b", Index: 2}, {Path: "c", Index: 3},
	}}

	got := s.Renumber(map[string]string{"a": "vacation_photos", "c": "vacation_photos"})
	// 没有自己提议的成员也采用系列基础名。
	assert.Equal(t, map[string]string{
		"a": "vacation_photos_001",
		"b": "vacation_photos_002",
		"c": "vacation_photos_003",
	}, got)

	got = s.Renumber(map[string]string{"a": "x", "b": "y", "c": "y"})
	assert.Equal(t, "y_001", got["a"])

	got = s.Renumber(map[string]string{"b": "x", "c": "y"})
	assert.Equal(t, "x_003", got["c"], "同次数时取序号最小成员的基础名")

	assert.Nil(t, s.Renumber(nil))
}

func TestRenumber_AlreadyNumberedKeepsStems(t *testing.T) {
	s := Series{Base: "Report", Pattern: Underscore, Members: []Member{
		{Path: "/d/Report_1.txt", Index: 1}, {Path: "/d/Report_2.txt", Index: 2}, {Path: "/d/Report_3.txt", Index: 3},
	}}

	got := s.Renumber(map[string]string{"/d/Report_1.txt": "Report", "/d/Report_2.txt": "Report", "/d/Report_3.txt": "Report"})
	assert.Equal(t, map[string]string{
		"/d/Report_1.txt": "Report_1",
		"/d/Report_2.txt": "Report_2",
		"/d/Report_3.txt": "Report_3",
	}, got)
}
