package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vidcat/internal/domain"
)

// ScanLibrary 扫描 <root>/<category>/<videodir>/ 两级结构，产出候选视频目录。
//
// 规则（硬约束）：
// - 顶层 category 按字典序访问；category 内的视频目录按字典序访问
//   （该顺序是 catalog 可复现性的一部分，不只是外观）
// - excludeDirs 里的顶层目录名整个跳过（例如下载暂存区）
// - 扫描阶段只做 ReadDir，不读文件内容，无副作用
//
// 失败：某个 category 或视频目录无法列出时，生成 filesystem_error 失败记录并
// 继续处理下一个兄弟目录；只有 root 本身无法列出才是运行级致命错误。
func ScanLibrary(root string, excludeDirs []string, mediaExts []string) ([]domain.VideoDirectory, []domain.FailureRecord, error) {
	root = filepath.Clean(root)

	topEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("无法列出根目录 %q：%w", root, err)
	}

	excluded := make(map[string]struct{}, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		excluded[x] = struct{}{}
	}

	dirs := make([]domain.VideoDirectory, 0, 128)
	failures := make([]domain.FailureRecord, 0, 8)

	// os.ReadDir 已按文件名排序，访问顺序天然是字典序。
	for _, cat := range topEntries {
		if !cat.IsDir() {
			continue
		}
		if _, ok := excluded[cat.Name()]; ok {
			continue
		}

		catDir := filepath.Join(root, cat.Name())
		subEntries, err := os.ReadDir(catDir)
		if err != nil {
			failures = append(failures, domain.FailureRecord{
				Subject: cat.Name(),
				Code:    domain.FailFilesystemError,
				Reason:  fmt.Sprintf("无法列出目录：%v", err),
			})
			continue
		}

		for _, sub := range subEntries {
			if !sub.IsDir() {
				continue
			}

			rel := filepath.ToSlash(filepath.Join(cat.Name(), sub.Name()))
			d, err := classify(cat.Name(), filepath.Join(catDir, sub.Name()), rel, mediaExts)
			if err != nil {
				failures = append(failures, domain.FailureRecord{
					Subject: rel,
					Code:    domain.FailFilesystemError,
					Reason:  fmt.Sprintf("无法列出目录：%v", err),
				})
				continue
			}
			dirs = append(dirs, d)
		}
	}

	return dirs, failures, nil
}

// classify 把视频目录内的文件按扩展名归入三个互斥角色：媒体 / 元数据 / 图片。
// 每个角色列表按字典序（ReadDir 顺序）排列；多候选不报错，平局裁决取第一个。
func classify(category, absDir, relDir string, mediaExts []string) (domain.VideoDirectory, error) {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return domain.VideoDirectory{}, err
	}

	d := domain.VideoDirectory{
		Category: category,
		AbsDir:   absDir,
		RelDir:   relDir,
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case isMediaExt(ext, mediaExts):
			d.Media = append(d.Media, name)
		case ext == ".json":
			d.Sidecars = append(d.Sidecars, name)
		case ext == ".jpg" || ext == ".jpeg":
			d.Images = append(d.Images, name)
		}
	}

	return d, nil
}

func isMediaExt(ext string, mediaExts []string) bool {
	for _, m := range mediaExts {
		if ext == m {
			return true
		}
	}
	return false
}
