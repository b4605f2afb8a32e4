package inspect

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vidcat/internal/infra/fsx"
	"github.com/John-Robertt/vidcat/internal/scan"
	"github.com/John-Robertt/vidcat/internal/sidecar"
)

// ListName 是 list 子命令在根目录下写出的产物文件名。
const ListName = "list.txt"

// ListReport 是 list 子命令的结果。
type ListReport struct {
	URLs     []string `json:"urls"`     // 按扫描顺序；同一 URL 只保留第一次出现
	Failures []string `json:"failures"` // 读不了/没有 webpage_url 的 sidecar
	ListPath string   `json:"list_path"`
}

// CollectURLs 收集根目录下所有 sidecar 的 webpage_url。
// 顺序来自扫描的字典序，重复 URL 只保留首次出现；
// 单个 sidecar 的问题降级为 Failures 里的一行。
func CollectURLs(root string, excludeDirs, mediaExts []string) (ListReport, error) {
	var rep ListReport

	dirs, scanFailures, err := scan.ScanLibrary(root, excludeDirs, mediaExts)
	if err != nil {
		return rep, err
	}
	for _, f := range scanFailures {
		rep.Failures = append(rep.Failures, f.Line())
	}

	seen := make(map[string]bool)
	for _, d := range dirs {
		for _, name := range d.Sidecars {
			rel := path.Join(d.RelDir, name)
			rec, err := sidecar.Load(filepath.Join(d.AbsDir, name))
			if err != nil {
				rep.Failures = append(rep.Failures, rel+" - sidecar 无法解析")
				continue
			}
			url := strings.TrimSpace(rec.WebpageURL)
			if url == "" {
				rep.Failures = append(rep.Failures, rel+" - 没有 webpage_url")
				continue
			}
			if seen[url] {
				continue
			}
			seen[url] = true
			rep.URLs = append(rep.URLs, url)
		}
	}
	return rep, nil
}

// WriteList 把 URL 清单原子写到根目录下的 list.txt（每行一个）。
func WriteList(root string, rep *ListReport) error {
	var sb strings.Builder
	for _, u := range rep.URLs {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}
	if err := fsx.WriteFileAtomicReplace(root, ListName, []byte(sb.String())); err != nil {
		return err
	}
	rep.ListPath = filepath.Join(root, ListName)
	return nil
}
