package domain

// Category 是文件的粗粒度类型，决定后续走哪一组候选来源。
type Category string

const (
	CategoryImage      Category = "Image"
	CategoryDocument   Category = "Document"
	CategoryAudio      Category = "Audio"
	CategoryVideo      Category = "Video"
	CategoryEmail      Category = "Email"
	CategoryWeb        Category = "Web"
	CategoryArchive    Category = "Archive"
	CategorySourceCode Category = "SourceCode"
	CategoryUnknown    Category = "Unknown"
)

// ParseCategory 把缓存/报告中的字符串还原为 Category；无法识别时返回 Unknown。
func ParseCategory(s string) Category {
	switch c := Category(s); c {
	case CategoryImage, CategoryDocument, CategoryAudio, CategoryVideo,
		CategoryEmail, CategoryWeb, CategoryArchive, CategorySourceCode:
		return c
	default:
		return CategoryUnknown
	}
}
