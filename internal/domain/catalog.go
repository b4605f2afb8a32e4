package domain

// Catalog 是最终产物：主映射 + 两个二级索引。
//
// 不变量：
// - 出现在二级索引中的 ID 必在 Videos 中，反之亦然
// - 每个 ID 列表去重且字典序排序
// - 序列化确定性：map 的 key 由 encoding/json 按字典序输出
//
// 生命周期：每次运行从零构建；只有 Failure Gate 放行后才会落盘。
type Catalog struct {
	GeneratedAt string                 `json:"generated_at"` // RFC3339 UTC（Z 后缀）
	Videos      map[string]VideoRecord `json:"videos"`
	ByGenre     map[string][]string    `json:"by_genre"`
	ByUploader  map[string][]string    `json:"by_uploader"`
}

// Decision 是 Failure Gate 的操作员决策。
type Decision string

const (
	// DecisionProceed 生成 catalog（失败视频被排除），不写失败日志。
	DecisionProceed Decision = "proceed"
	// DecisionAbort 写出失败日志并终止，不写/不覆盖 catalog。
	DecisionAbort Decision = "abort"
)

// ParseDecision 解析操作员输入的决策 token（"1"=proceed，"2"=abort）。
// 返回 ok=false 表示输入无法识别；按契约上层应降级为 proceed 并给出警告。
func ParseDecision(token string) (Decision, bool) {
	switch token {
	case "1":
		return DecisionProceed, true
	case "2":
		return DecisionAbort, true
	default:
		return DecisionProceed, false
	}
}
