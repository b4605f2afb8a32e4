package sidecar

import (
	"encoding/json"
	"os"
	"strings"
)

// Record 对应视频目录里的 *.json 元数据 sidecar。
//
// 可选字段用指针/nil 切片表达"缺失"，进入 catalog 时保持 null，
// 绝不默认成 0 之类的误导值。
type Record struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
	Channel  string `json:"channel"`

	UploadDate      *string `json:"upload_date"` // YYYYMMDD 字符串
	DurationSeconds *int64  `json:"duration_seconds"`
	ViewCount       *int64  `json:"view_count"`
	Description     *string `json:"description"`

	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`

	WebpageURL string `json:"webpage_url"`
}

// MissingFieldError 表示必填字段缺失（title，或 uploader/channel 两者皆空）。
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "sidecar 缺少必填字段：" + e.Field
}

// Load 读取并解析一个元数据 sidecar。
// 读不到或 JSON 畸形都返回错误（由上层归类为 invalid_metadata）。
func Load(path string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// UploaderName 返回生效的上传者名：uploader 优先，其次 channel。
func (r Record) UploaderName() string {
	if u := strings.TrimSpace(r.Uploader); u != "" {
		return u
	}
	return strings.TrimSpace(r.Channel)
}

// Validate 执行必填字段策略：title 缺失，或 uploader 与 channel 同时缺失，
// 都让该视频被排除；其他字段缺失可接受（保持未设置）。
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &MissingFieldError{Field: "title"}
	}
	if r.UploaderName() == "" {
		return &MissingFieldError{Field: "uploader"}
	}
	return nil
}
