package domain

// Metadata 是 EXIF 探测得到的扁平记录；所有字段可选，保留原始字符串形式。
type Metadata struct {
	Title            string `json:"title,omitempty"`
	Artist           string `json:"artist,omitempty"`
	Album            string `json:"album,omitempty"`
	DateTimeOriginal string `json:"date_time_original,omitempty"`
	Description      string `json:"description,omitempty"`
	Subject          string `json:"subject,omitempty"`
	Author           string `json:"author,omitempty"`
	Creator          string `json:"creator,omitempty"`
	LastModifiedBy   string `json:"last_modified_by,omitempty"`
	CreationDate     string `json:"creation_date,omitempty"`
	CreateDate       string `json:"create_date,omitempty"`

	GPSLatitude     string `json:"gps_latitude,omitempty"`
	GPSLatitudeRef  string `json:"gps_latitude_ref,omitempty"`
	GPSLongitude    string `json:"gps_longitude,omitempty"`
	GPSLongitudeRef string `json:"gps_longitude_ref,omitempty"`
}

// Normalize 做字段合并：
// - Author 依次取 author -> creator -> last_modified_by 中第一个通过 useful 的值
// - CreationDate 取 creation_date -> create_date
//
// useful 为 nil 时只看是否非空。
func (m Metadata) Normalize(useful func(string) bool) Metadata {
	if useful == nil {
		useful = func(s string) bool { return s != "" }
	}
	author := ""
	for _, v := range []string{m.Author, m.Creator, m.LastModifiedBy} {
		if v != "" && useful(v) {
			author = v
			break
		}
	}
	m.Author = author
	if m.CreationDate == "" {
		m.CreationDate = m.CreateDate
	}
	return m
}

// HasGPS 表示四个 GPS 字段是否齐全（ref 缺失时不做位置增强）。
func (m Metadata) HasGPS() bool {
	return m.GPSLatitude != "" && m.GPSLongitude != "" &&
		m.GPSLatitudeRef != "" && m.GPSLongitudeRef != ""
}

// Timestamp 返回用于日期后缀的原始时间串：DateTimeOriginal 优先。
func (m Metadata) Timestamp() string {
	if m.DateTimeOriginal != "" {
		return m.DateTimeOriginal
	}
	if m.CreationDate != "" {
		return m.CreationDate
	}
	return m.CreateDate
}

// IsEmpty 表示记录里没有任何字段。
func (m Metadata) IsEmpty() bool { return m == Metadata{} }
