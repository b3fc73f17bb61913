// Package metadata 从外部 EXIF 工具（或内置解码器）读取固定字段集合。
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/John-Robertt/nameback/internal/domain"
)

// Prober 读取单个文件的元数据。
//
// 约束：
// - 只读，不修改文件
// - 失败时返回 error；上层按"空元数据"继续处理
type Prober interface {
	Probe(ctx context.Context, path string) (domain.Metadata, error)
}

// ErrUnsupported 表示该 Prober 不支持此文件格式。
var ErrUnsupported = errors.New("metadata: 不支持的格式")

// Chain 依次尝试多个 Prober，返回第一个成功的结果。
type Chain []Prober

func (c Chain) Probe(ctx context.Context, path string) (domain.Metadata, error) {
	var errs []error
	for _, p := range c {
		if p == nil {
			continue
		}
		m, err := p.Probe(ctx, path)
		if err == nil {
			return m, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return domain.Metadata{}, nil
	}
	return domain.Metadata{}, errors.Join(errs...)
}

// ParseJSON 解析 `exiftool -json <path>` 的输出（一个对象组成的数组，只取第一个）。
func ParseJSON(b []byte) (domain.Metadata, error) {
	var arr []map[string]any
	if err := json.Unmarshal(b, &arr); err != nil {
		return domain.Metadata{}, fmt.Errorf("exiftool JSON 解析失败：%w", err)
	}
	if len(arr) == 0 {
		return domain.Metadata{}, errors.New("exiftool 输出为空")
	}
	return FromFields(arr[0]), nil
}

// FromFields 把 exiftool 的字段表映射为 Metadata。数字与列表按字符串形式保留。
func FromFields(f map[string]any) domain.Metadata {
	return domain.Metadata{
		Title:            field(f, "Title"),
		Artist:           field(f, "Artist"),
		Album:            field(f, "Album"),
		DateTimeOriginal: field(f, "DateTimeOriginal"),
		Description:      field(f, "Description"),
		Subject:          field(f, "Subject"),
		Author:           field(f, "Author"),
		Creator:          field(f, "Creator"),
		LastModifiedBy:   field(f, "LastModifiedBy"),
		CreationDate:     field(f, "CreationDate"),
		CreateDate:       field(f, "CreateDate"),
		GPSLatitude:      field(f, "GPSLatitude"),
		GPSLatitudeRef:   field(f, "GPSLatitudeRef"),
		GPSLongitude:     field(f, "GPSLongitude"),
		GPSLongitudeRef:  field(f, "GPSLongitudeRef"),
	}
}

func field(f map[string]any, key string) string {
	v, ok := f[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, stringify(t[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
