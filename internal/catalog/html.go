package catalog

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"sort"

	"github.com/John-Robertt/vidcat/internal/domain"
	"github.com/John-Robertt/vidcat/internal/infra/fsx"
)

// catalog.html 是从 catalog.json 同一份内存文档衍生的只读视图：
// 按 genre 分节，每个视频一行。catalog.json 永远是规范产物，HTML 只是衍生。
var htmlTmpl = template.Must(template.New("catalog").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>Video Catalog</title>
</head>
<body>
<h1>Video Catalog</h1>
<p class="generated-at">generated_at: {{.GeneratedAt}}</p>
{{range .Genres}}<h2>{{.Name}}</h2>
<ul>
{{range .Videos}}<li data-id="{{.ID}}"><strong>{{.Title}}</strong> · {{.Uploader}}{{if .UploadDate}}（{{.UploadDate}}）{{end}}{{if .Duration}} {{.Duration}}s{{end}} <a href="../{{.Path}}">观看</a></li>
{{end}}</ul>
{{end}}</body>
</html>
`))

type htmlGenre struct {
	Name   string
	Videos []domain.VideoRecord
}

type htmlDoc struct {
	GeneratedAt string
	Genres      []htmlGenre
}

// EncodeHTML 把 Catalog 渲染为衍生的 catalog.html。
// 遍历顺序全部来自显式排序键（genre 字典序、组内按 ID），与 JSON 一样可复现。
func EncodeHTML(c domain.Catalog) ([]byte, error) {
	doc := htmlDoc{GeneratedAt: c.GeneratedAt}

	genres := make([]string, 0, len(c.ByGenre))
	for g := range c.ByGenre {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	for _, g := range genres {
		section := htmlGenre{Name: g}
		for _, id := range c.ByGenre[g] {
			v, ok := c.Videos[id]
			if !ok {
				// 二级索引与主映射不一致属于构建缺陷，宁可失败也不输出错页面。
				return nil, fmt.Errorf("by_genre[%q] 引用了主映射里不存在的 ID %q", g, id)
			}
			section.Videos = append(section.Videos, v)
		}
		doc.Genres = append(doc.Genres, section)
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHTML 原子写出衍生的 catalog.html。
func WriteHTML(root, catalogName string, c domain.Catalog) (string, error) {
	b, err := EncodeHTML(c)
	if err != nil {
		return "", err
	}
	name := HTMLName(catalogName)
	if err := fsx.WriteFileAtomicReplace(root, name, b); err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
