package domain

import "sort"

// 失败分类（对整次运行都不是致命的；每条失败只把一个视频降级为"排除"）。
const (
	FailNoMediaFile          = "no_media_file"
	FailNoMetadataSidecar    = "no_metadata_sidecar"
	FailNoIdentifier         = "no_identifier"
	FailInvalidMetadata      = "invalid_metadata"
	FailMissingRequiredField = "missing_required_field"
	FailFilesystemError      = "filesystem_error"

	// WarnThumbnailBackfill 是软警告：外部缩略图回填失败不排除视频，
	// 该视频的 thumbnail 保持空串。
	WarnThumbnailBackfill = "thumbnail_backfill_failed"
)

// FailureRecord 是一条诊断记录：主体（路径或 ID）+ 固定分类 + 人类可读原因。
// 创建后不会自动重试；整次运行按序累积，输出前按 Subject 显式排序。
type FailureRecord struct {
	Subject string `json:"subject"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}

// Line 返回失败日志（index_fails.txt）中的一行。
func (f FailureRecord) Line() string {
	return f.Subject + " - " + f.Reason
}

// SortFailures 按 Subject 字典序稳定排序（Subject 相同按 Code）。
// 输出顺序一律来自显式排序键，不依赖累积顺序。
func SortFailures(fs []FailureRecord) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Subject != fs[j].Subject {
			return fs[i].Subject < fs[j].Subject
		}
		return fs[i].Code < fs[j].Code
	})
}
