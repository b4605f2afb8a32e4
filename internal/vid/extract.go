package vid

import (
	"regexp"

	"github.com/John-Robertt/vidcat/internal/domain"
)

// 文件名里的平台 ID 形态：方括号包住的 11 位字母数字（含 - 和 _）。
// 例如 "My Title [dQw4w9WgXcQ].mp4"。方括号是硬约束，避免把普通单词误判成 ID。
var bracketRE = regexp.MustCompile(`\[([A-Za-z0-9_-]{11})\]`)

// NotFoundError 表示媒体文件名里没有可解析的平台 ID。
type NotFoundError struct {
	Filename string
}

func (e *NotFoundError) Error() string {
	return "无法从文件名解析出平台 ID：" + e.Filename
}

// Extract 从媒体文件名（不是 sidecar）中提取平台 ID。
// 取第一个匹配；没有匹配则返回 *NotFoundError（对该视频是致命的，无法作为 catalog 主键）。
func Extract(filename string) (domain.VideoID, error) {
	m := bracketRE.FindStringSubmatch(filename)
	if m == nil {
		return "", &NotFoundError{Filename: filename}
	}
	id, ok := domain.ParseVideoID(m[1])
	if !ok {
		return "", &NotFoundError{Filename: filename}
	}
	return id, nil
}
