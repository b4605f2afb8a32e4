package inspect

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vidcat/internal/scan"
	"github.com/John-Robertt/vidcat/internal/sidecar"
)

// PlaytimeReport 是 playtime 子命令的结果。
type PlaytimeReport struct {
	Videos       int      `json:"videos"`        // 计入总时长的 sidecar 数
	TotalSeconds int64    `json:"total_seconds"` // duration_seconds 之和
	Human        string   `json:"human"`         // w/d/h/m/s 人类可读形式
	Failures     []string `json:"failures"`      // 读不了/没有时长的 sidecar，每条一行
}

// Playtime 汇总根目录下（排除规则与 build 一致）所有 sidecar 的
// duration_seconds。读不到或缺少时长的 sidecar 不会中断汇总，
// 只在 Failures 里留一行。
func Playtime(root string, excludeDirs, mediaExts []string) (PlaytimeReport, error) {
	var rep PlaytimeReport

	dirs, scanFailures, err := scan.ScanLibrary(root, excludeDirs, mediaExts)
	if err != nil {
		return rep, err
	}
	for _, f := range scanFailures {
		rep.Failures = append(rep.Failures, f.Line())
	}

	for _, d := range dirs {
		for _, name := range d.Sidecars {
			rel := path.Join(d.RelDir, name)
			rec, err := sidecar.Load(filepath.Join(d.AbsDir, name))
			if err != nil {
				rep.Failures = append(rep.Failures, rel+" - sidecar 无法解析")
				continue
			}
			if rec.DurationSeconds == nil {
				rep.Failures = append(rep.Failures, rel+" - 没有 duration_seconds")
				continue
			}
			rep.Videos++
			rep.TotalSeconds += *rec.DurationSeconds
		}
	}

	rep.Human = FormatSeconds(rep.TotalSeconds)
	return rep, nil
}

// FormatSeconds 把秒数展开成 w/d/h/m/s 形式，零值单位省略；
// 全零输出 "0s"。
func FormatSeconds(total int64) string {
	if total <= 0 {
		return "0s"
	}
	weeks := total / (7 * 24 * 3600)
	total %= 7 * 24 * 3600
	days := total / (24 * 3600)
	total %= 24 * 3600
	hours := total / 3600
	total %= 3600
	mins := total / 60
	secs := total % 60

	var parts []string
	for _, p := range []struct {
		v    int64
		unit string
	}{{weeks, "w"}, {days, "d"}, {hours, "h"}, {mins, "m"}, {secs, "s"}} {
		if p.v > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", p.v, p.unit))
		}
	}
	return strings.Join(parts, " ")
}
