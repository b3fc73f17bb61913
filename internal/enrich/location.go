package enrich

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/John-Robertt/nameback/internal/domain"
)

// Location 是带符号的十进制坐标（南纬、西经为负）。
type Location struct {
	Lat float64
	Lon float64
}

// ParseGPS 从元数据解析坐标；四个 GPS 字段缺一或解析失败时返回 false。
func ParseGPS(m domain.Metadata) (Location, bool) {
	if !m.HasGPS() {
		return Location{}, false
	}
	lat, ok := parseCoordinate(m.GPSLatitude)
	if !ok {
		return Location{}, false
	}
	lon, ok := parseCoordinate(m.GPSLongitude)
	if !ok {
		return Location{}, false
	}
	if isRef(m.GPSLatitudeRef, "S", "South") {
		lat = -lat
	}
	if isRef(m.GPSLongitudeRef, "W", "West") {
		lon = -lon
	}
	return Location{Lat: lat, Lon: lon}, true
}

func isRef(v string, short, long string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, short) || strings.EqualFold(v, long)
}

// parseCoordinate 支持：
// - 十进制："37.7749"
// - 度 + 十进制分："37 46.44"
// - 度分秒："37 deg 46' 26.40\" N"
func parseCoordinate(s string) (float64, bool) {
	s = strings.ReplaceAll(s, "deg", " ")
	s = strings.NewReplacer("'", " ", `"`, " ", "°", " ").Replace(s)

	var nums []float64
	for _, p := range strings.Fields(s) {
		switch strings.ToUpper(p) {
		case "N", "S", "E", "W":
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		nums = append(nums, v)
	}
	switch len(nums) {
	case 1:
		return nums[0], true
	case 2:
		return nums[0] + nums[1]/60, true
	case 3:
		return nums[0] + nums[1]/60 + nums[2]/3600, true
	default:
		return 0, false
	}
}

// FormatCoordinates 输出 "47.61N_122.33W"。
func FormatCoordinates(loc Location) string {
	latDir, lonDir := "N", "E"
	if loc.Lat < 0 {
		latDir = "S"
	}
	if loc.Lon < 0 {
		lonDir = "W"
	}
	return fmt.Sprintf("%.2f%s_%.2f%s", math.Abs(loc.Lat), latDir, math.Abs(loc.Lon), lonDir)
}
