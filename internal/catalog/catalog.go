package catalog

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vidcat/internal/domain"
	"github.com/John-Robertt/vidcat/internal/infra/fsx"
)

// EncodeJSON 把 Catalog 序列化为规范产物（pretty-print UTF-8）。
//
// 确定性：顶层 key 顺序由结构体字段固定为
// generated_at / videos / by_genre / by_uploader；
// map 的 key 由 encoding/json 按字典序输出。同一输入必然得到同一字节序列。
func EncodeJSON(c domain.Catalog) ([]byte, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// WriteJSON 原子写出 catalog.json。文档先在内存里构建完毕再落盘，
// 序列化中途失败不可能留下半截 catalog；Failure Gate 放行后无条件覆盖旧文件。
func WriteJSON(root, name string, c domain.Catalog) (string, error) {
	b, err := EncodeJSON(c)
	if err != nil {
		return "", err
	}
	if err := fsx.WriteFileAtomicReplace(root, name, b); err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// HTMLName 从 catalog.json 的文件名推导衍生 HTML 的文件名。
func HTMLName(catalogName string) string {
	return strings.TrimSuffix(catalogName, ".json") + ".html"
}

// WriteFailLog 写出失败日志：每条失败一行 "<subject> - <reason>"，按主体排序。
// 只在操作员选择 abort 时调用。
func WriteFailLog(root, name string, failures []domain.FailureRecord) (string, error) {
	sorted := append([]domain.FailureRecord(nil), failures...)
	domain.SortFailures(sorted)

	var sb strings.Builder
	for _, f := range sorted {
		sb.WriteString(f.Line())
		sb.WriteByte('\n')
	}
	if err := fsx.WriteFileAtomicReplace(root, name, []byte(sb.String())); err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// RemoveFailLog 删除上次 abort 留下的失败日志（不存在不算错误）。
func RemoveFailLog(root, name string) error {
	return fsx.RemoveIfExists(filepath.Join(root, name))
}
