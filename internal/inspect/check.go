// Package inspect 提供对既有产物和库结构的辅助检查
// （不修改任何文件，只读不写，除 list 子命令显式要求的 list.txt）。
package inspect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/vidcat/internal/catalog"
	"github.com/John-Robertt/vidcat/internal/domain"
)

// CheckReport 是 check 子命令的结果：逐条问题行，按固定顺序输出。
type CheckReport struct {
	Total    int      `json:"total"`    // catalog 里的视频总数
	Problems []string `json:"problems"` // 每行一条问题，已排序
}

// OK 表示没有发现任何问题。
func (r CheckReport) OK() bool { return len(r.Problems) == 0 }

// Check 校验既有 catalog.json 与磁盘/catalog.html 的一致性：
//   - 每条记录的媒体文件必须存在
//   - thumbnail 非空时文件必须存在；为空只记一条提示
//   - catalog.html 存在时，主映射里的每个 ID 都必须出现在 HTML 里
//
// 只有 catalog.json 本身读不到/解析不了才返回 error；
// 其余一切差异都是 Problems 里的一行。
func Check(root, catalogName string) (CheckReport, error) {
	var rep CheckReport

	b, err := os.ReadFile(filepath.Join(root, catalogName))
	if err != nil {
		return rep, fmt.Errorf("读取 %s 失败：%w", catalogName, err)
	}
	var c domain.Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return rep, fmt.Errorf("%s 无法解析：%w", catalogName, err)
	}
	rep.Total = len(c.Videos)

	ids := make([]string, 0, len(c.Videos))
	for id := range c.Videos {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		v := c.Videos[id]
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(v.Path))); err != nil {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s：媒体文件缺失 %s", id, v.Path))
		}
		if v.Thumbnail == "" {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s：没有缩略图", id))
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(v.Thumbnail))); err != nil {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s：缩略图文件缺失 %s", id, v.Thumbnail))
		}
	}

	rep.Problems = append(rep.Problems, checkHTML(root, catalogName, ids)...)
	sort.Strings(rep.Problems)
	return rep, nil
}

// checkHTML 用 catalog.json 的 ID 集合核对衍生的 catalog.html。
// HTML 不存在不算问题（可能从未 proceed 过），畸形或 ID 缺席才是。
func checkHTML(root, catalogName string, ids []string) []string {
	htmlPath := filepath.Join(root, catalog.HTMLName(catalogName))
	f, err := os.Open(htmlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []string{fmt.Sprintf("catalog.html：读取失败 %v", err)}
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return []string{fmt.Sprintf("catalog.html：无法解析 %v", err)}
	}

	seen := make(map[string]bool)
	doc.Find("li[data-id]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("data-id"); ok {
			seen[id] = true
		}
	})

	var problems []string
	for _, id := range ids {
		if !seen[id] {
			problems = append(problems, fmt.Sprintf("%s：未出现在 catalog.html 里", id))
		}
	}
	return problems
}
