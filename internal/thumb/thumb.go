package thumb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vidcat/internal/domain"
)

// Backfiller 是"缩略图回填"能力：给定视频 ID 和输出目录，由外部命令抓取并
// 转换出 .jpg（文件名里带 ID）。核心只依赖这个接口，不依赖具体命令行；
// 任何非零退出/错误都是软失败（记警告后继续），绝不升级为运行级错误。
type Backfiller interface {
	Backfill(ctx context.Context, id domain.VideoID, dir string) error
}

// Resolver 按固定顺序解析一个视频的缩略图。
//
// 顺序（前一步无结果才尝试下一步）：
// 1. 已存在的 "* [<id>].jpg"
// 2. 已存在的 "* [<id>].thumb.jpg"
// 3. 媒体为 .mp4 时：外部回填，然后取第一个带 ID 的 .jpg
// 4. 媒体为 .mkv 时：同上
// 5. 空串（明确的"无缩略图"，绝不是占位路径）
//
// 1-2 步只看扫描时已有的文件，确保已经有缩略图的目录在重复运行时
// 既便宜又幂等，不会重复触发外部命令。
type Resolver struct {
	// Backfill 为 nil 时跳过 3-4 步（等价于回填关闭）。
	Backfill Backfiller
}

// Resolve 返回目录内的缩略图文件名（basename）和软警告列表；
// 没有缩略图时文件名为空串。
func (r Resolver) Resolve(ctx context.Context, d domain.VideoDirectory, mediaName string, id domain.VideoID) (string, []string) {
	// 1. 精确的图片 sidecar。后缀匹配锚定在字面的 "[<id>]" 上，
	//    标题互相包含的两个视频不可能交叉命中。
	if name := matchSuffix(d.Images, " "+id.Bracketed()+".jpg"); name != "" {
		return name, nil
	}

	// 2. 工具生成的 .thumb.jpg sidecar。
	if name := matchSuffix(d.Images, " "+id.Bracketed()+".thumb.jpg"); name != "" {
		return name, nil
	}

	if r.Backfill == nil {
		return "", nil
	}

	var warnings []string
	ext := strings.ToLower(filepath.Ext(mediaName))

	// 3-4. 外部回填。两个容器族分开尝试；.webm 永不回填。
	for _, family := range []string{".mp4", ".mkv"} {
		if ext != family {
			continue
		}
		name, err := r.backfillOnce(ctx, d.AbsDir, id)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s：%s（%s）：%v",
				d.RelDir, domain.WarnThumbnailBackfill, id, err))
			continue
		}
		if name != "" {
			return name, warnings
		}
	}

	// 5. 明确的"无缩略图"。
	return "", warnings
}

func (r Resolver) backfillOnce(ctx context.Context, absDir string, id domain.VideoID) (string, error) {
	if err := r.Backfill.Backfill(ctx, id, absDir); err != nil {
		return "", err
	}

	// 回填产物出现在同一目录里：重新列目录，取第一个带 ID 的 .jpg。
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, id.Bracketed()) && strings.ToLower(filepath.Ext(name)) == ".jpg" {
			return name, nil
		}
	}
	return "", errors.New("外部命令成功返回，但目录里没有出现带 ID 的 .jpg")
}

// matchSuffix 在已排序的文件名列表里找第一个以 suffix 结尾的（字典序第一个）。
func matchSuffix(names []string, suffix string) string {
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			return n
		}
	}
	return ""
}
