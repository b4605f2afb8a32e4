package app

import (
	"sort"
	"time"

	"github.com/John-Robertt/vidcat/internal/domain"
)

// BuildCatalog 把去重后的 VideoRecord 汇编成最终 Catalog：
// 主映射按 ID，二级索引按 genre / uploader 分组。
//
// - 每个 ID 列表去重并按字典序排序（显式排序键，不依赖累积顺序）
// - 二级索引里的 ID 必然出现在主映射中：二者来自同一份 records
func BuildCatalog(generatedAt time.Time, records []domain.VideoRecord) domain.Catalog {
	c := domain.Catalog{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Videos:      make(map[string]domain.VideoRecord, len(records)),
		ByGenre:     make(map[string][]string, 16),
		ByUploader:  make(map[string][]string, 64),
	}

	for _, r := range records {
		c.Videos[r.ID] = r
		c.ByGenre[r.Genre] = append(c.ByGenre[r.Genre], r.ID)
		c.ByUploader[r.Uploader] = append(c.ByUploader[r.Uploader], r.ID)
	}

	for _, index := range []map[string][]string{c.ByGenre, c.ByUploader} {
		for key, ids := range index {
			index[key] = sortDedupe(ids)
		}
	}

	return c
}

func sortDedupe(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for _, id := range ids {
		if len(out) > 0 && out[len(out)-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}
