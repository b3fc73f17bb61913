package domain

// Analysis 是单个文件的命名分析结果。
//
// 约束：
// - Chosen 为 nil 且 Cached=false 时 Base/Proposed 均为空，重命名阶段跳过该文件
// - 缓存命中时 Cached=true、Chosen 为 nil，Base 直接取自缓存
// - Base 是富化后的基础名（尚未做系列编号与冲突处理）
// - Proposed 是最终文件名（含扩展名），由批次级对账写入
type Analysis struct {
	Entry      PathEntry   `json:"entry"`
	Metadata   Metadata    `json:"-"`
	Candidates []Candidate `json:"candidates"`
	Chosen     *Candidate  `json:"chosen,omitempty"`
	Base       string      `json:"base,omitempty"`
	Proposed   string      `json:"proposed,omitempty"`

	// Cached 表示 Base 来自持久缓存命中（未重新跑提取器）。
	Cached bool `json:"cached,omitempty"`
}

// HasProposal 表示是否产生了与当前文件名不同的新名字。
func (a Analysis) HasProposal() bool {
	return a.Proposed != "" && a.Proposed != a.Entry.Name
}

// RenameResult 是单个重命名操作的结果。
type RenameResult struct {
	Original string `json:"original"`
	NewPath  string `json:"new_path,omitempty"`
	NewName  string `json:"new_name,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}
