package domain

// Source 是候选名的来源标签；主要作用是影响打分权重。
type Source string

const (
	SourceMetadata         Source = "Metadata"
	SourceTextExtract      Source = "TextExtract"
	SourcePdfText          Source = "PdfText"
	SourceOcrImage         Source = "OcrImage"
	SourceOcrVideo         Source = "OcrVideo"
	SourceDirectoryContext Source = "DirectoryContext"
	SourceFilenameAnalysis Source = "FilenameAnalysis"
	SourceFallback         Source = "Fallback"
)

const (
	// ScoreHighQuality 以上视为高质量候选。
	ScoreHighQuality = 5.0
	// ScoreAcceptable 是被选中的最低分；低于它一律拒绝。
	ScoreAcceptable = 2.0
)

// Candidate 是一个待打分/已打分的候选名。
type Candidate struct {
	Text   string  `json:"text"`
	Source Source  `json:"source"`
	Score  float64 `json:"score"`
}

// Acceptable 表示该候选是否达到选中阈值。
func (c Candidate) Acceptable() bool { return c.Score >= ScoreAcceptable }
