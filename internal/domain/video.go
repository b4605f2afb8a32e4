package domain

import (
	"regexp"
	"strings"
)

// VideoID 是视频在目录中的唯一主键（平台 ID，固定 11 位）。
//
// 约束：要么得到唯一 VideoID，要么失败；宁可排除该视频，也不允许写错主键。
type VideoID string

var idRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID 校验一个已经去掉方括号的 ID 字符串。
func ParseVideoID(s string) (VideoID, bool) {
	s = strings.TrimSpace(s)
	if !idRE.MatchString(s) {
		return "", false
	}
	return VideoID(s), true
}

// Bracketed 返回文件名中出现的形态，例如 "[dQw4w9WgXcQ]"。
func (id VideoID) Bracketed() string {
	return "[" + string(id) + "]"
}

// VideoDirectory 描述一次扫描得到的单个视频目录（只做 ReadDir，不读文件内容）。
//
// 不变量（实现必须遵守）：
// - AbsDir 必须是 clean + absolute
// - Media/Sidecars/Images 均已按字典序排序（多候选的平局裁决：取第一个）
type VideoDirectory struct {
	Category string
	AbsDir   string
	RelDir   string // 相对扫描根目录

	Media    []string // 视频容器文件名（basename）
	Sidecars []string // *.json 元数据文件名
	Images   []string // *.jpg / *.jpeg 文件名
}

// MediaFile 返回被选中的媒体文件名（字典序第一个）；没有则返回空串。
func (d VideoDirectory) MediaFile() string {
	if len(d.Media) == 0 {
		return ""
	}
	return d.Media[0]
}

// SidecarFile 返回被选中的元数据文件名（字典序第一个）；没有则返回空串。
func (d VideoDirectory) SidecarFile() string {
	if len(d.Sidecars) == 0 {
		return ""
	}
	return d.Sidecars[0]
}
