package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// 运行级错误码（合成失败条目用；视频级分类见 failure.go）。
const (
	ErrCodeRootNotFound  = "root_not_found"
	ErrCodeIOFailed      = "io_failed"
	ErrCodeConfigInvalid = "config_invalid"
)

// 单个视频目录的处理结果状态。
const (
	StatusIndexed  = "indexed"
	StatusExcluded = "excluded"
)

// BuildReport 是对外稳定输出（stdout JSON）的结构。
type BuildReport struct {
	Root   string `json:"root"`
	DryRun bool   `json:"dry_run"` // 回填关闭时为 true（不调用外部命令）

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Decision Decision `json:"decision"` // proceed / abort；无失败时恒为 proceed

	Summary  ReportSummary   `json:"summary"`
	Failures []FailureRecord `json:"failures"`
	Warnings []string        `json:"warnings"`

	CatalogPath string `json:"catalog_path"` // abort 时为空
	FailLogPath string `json:"fail_log_path"` // 仅 abort 时非空
}

type ReportSummary struct {
	Indexed  int `json:"indexed"`
	Excluded int `json:"excluded"`
	Warnings int `json:"warnings"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) failures 按 Subject 显式排序、warnings 字典序排序
// 3) summary 的 Excluded/Warnings 由列表计算得出
func (r *BuildReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	SortFailures(r.Failures)
	sort.Strings(r.Warnings)

	r.Summary.Excluded = len(r.Failures)
	r.Summary.Warnings = len(r.Warnings)
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r BuildReport) MarshalJSON() ([]byte, error) {
	type Alias BuildReport
	return json.Marshal(Alias(r))
}
