// Package enrich 为选中的基名追加位置与日期后缀。
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/John-Robertt/nameback/internal/domain"
)

// Geocoder 把坐标转换为 City_REGION 之类的地名 token。
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Enricher 按 base_location_date 的顺序拼接后缀。
//
// 约束：
// - Geocode 关闭、Geocoder 为空或反查失败时，位置回退为坐标格式
// - 时间取 DateTimeOriginal，其次 CreationDate
type Enricher struct {
	IncludeLocation  bool
	IncludeTimestamp bool
	Geocode          bool
	Geocoder         Geocoder
	Logger           *slog.Logger
}

// Enabled 表示是否会产生任何后缀。
func (e Enricher) Enabled() bool { return e.IncludeLocation || e.IncludeTimestamp }

func (e Enricher) Apply(ctx context.Context, base string, m domain.Metadata) string {
	if base == "" || !e.Enabled() {
		return base
	}
	parts := []string{base}

	if e.IncludeLocation {
		if loc, ok := ParseGPS(m); ok {
			parts = append(parts, e.location(ctx, loc))
		}
	}
	if e.IncludeTimestamp {
		if d, ok := FormatDate(m.Timestamp()); ok {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, "_")
}

func (e Enricher) location(ctx context.Context, loc Location) string {
	if e.Geocode && e.Geocoder != nil {
		name, err := e.Geocoder.Reverse(ctx, loc.Lat, loc.Lon)
		if err == nil && name != "" {
			return name
		}
		if err != nil && e.Logger != nil {
			e.Logger.Debug("geocode failed, using coordinates", "lat", loc.Lat, "lon", loc.Lon, "err", err)
		}
	}
	return FormatCoordinates(loc)
}
