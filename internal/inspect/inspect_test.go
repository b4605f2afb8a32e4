package inspect

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/vidcat/internal/app"
	"github.com/John-Robertt/vidcat/internal/catalog"
	"github.com/John-Robertt/vidcat/internal/domain"
)

func touch(t *testing.T, path string) {
	t.Helper()
	writeFile(t, path, "")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写文件失败：%v", err)
	}
}

var testMediaExts = []string{".mp4", ".mkv", ".webm"}

// writeCatalogFixture 在 root 下落一份 catalog.json + catalog.html。
func writeCatalogFixture(t *testing.T, root string, records []domain.VideoRecord) {
	t.Helper()
	c := app.BuildCatalog(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), records)
	if _, err := catalog.WriteJSON(root, "catalog.json", c); err != nil {
		t.Fatalf("写 catalog.json 失败：%v", err)
	}
	if _, err := catalog.WriteHTML(root, "catalog.json", c); err != nil {
		t.Fatalf("写 catalog.html 失败：%v", err)
	}
}

func TestCheck_AllConsistent(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "v1", "a [AAAAAAAAAAA].mp4"))
	touch(t, filepath.Join(root, "A", "v1", "a [AAAAAAAAAAA].jpg"))
	writeCatalogFixture(t, root, []domain.VideoRecord{{
		ID: "AAAAAAAAAAA", Title: "Alpha", Uploader: "Alice", Genre: "A",
		Path: "A/v1/a [AAAAAAAAAAA].mp4", Thumbnail: "A/v1/a [AAAAAAAAAAA].jpg",
	}})

	rep, err := Check(root, "catalog.json")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !rep.OK() {
		t.Fatalf("不期望问题：%v", rep.Problems)
	}
	if rep.Total != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", rep.Total)
	}
}

func TestCheck_MissingFilesReported(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "v1", "a [AAAAAAAAAAA].mp4"))
	writeCatalogFixture(t, root, []domain.VideoRecord{
		{ID: "AAAAAAAAAAA", Title: "Alpha", Uploader: "Alice", Genre: "A",
			Path: "A/v1/a [AAAAAAAAAAA].mp4", Thumbnail: "A/v1/gone.jpg"},
		{ID: "BBBBBBBBBBB", Title: "Beta", Uploader: "Bob", Genre: "B",
			Path: "B/v1/b [BBBBBBBBBBB].mp4", Thumbnail: ""},
	})

	rep, err := Check(root, "catalog.json")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// AAAAAAAAAAA 缩略图缺文件；BBBBBBBBBBB 媒体缺失 + 没有缩略图。
	if len(rep.Problems) != 3 {
		t.Fatalf("期望 3 条问题，实际 %d：%v", len(rep.Problems), rep.Problems)
	}
	joined := strings.Join(rep.Problems, "\n")
	for _, want := range []string{"缩略图文件缺失", "媒体文件缺失", "没有缩略图"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("缺少问题 %q：%v", want, rep.Problems)
		}
	}
}

func TestCheck_HTMLMissingID(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A", "v1", "a [AAAAAAAAAAA].mp4"))
	touch(t, filepath.Join(root, "A", "v1", "a [AAAAAAAAAAA].jpg"))
	writeCatalogFixture(t, root, []domain.VideoRecord{{
		ID: "AAAAAAAAAAA", Title: "Alpha", Uploader: "Alice", Genre: "A",
		Path: "A/v1/a [AAAAAAAAAAA].mp4", Thumbnail: "A/v1/a [AAAAAAAAAAA].jpg",
	}})
	// 人为篡改 HTML，使 ID 缺席。
	writeFile(t, filepath.Join(root, "catalog.html"), "<html><body></body></html>")

	rep, err := Check(root, "catalog.json")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(rep.Problems) != 1 || !strings.Contains(rep.Problems[0], "未出现在 catalog.html") {
		t.Fatalf("期望 HTML 缺席问题，实际 %v", rep.Problems)
	}
}

func TestCheck_CatalogUnreadable(t *testing.T) {
	if _, err := Check(t.TempDir(), "catalog.json"); err == nil {
		t.Fatalf("catalog.json 缺失应是错误")
	}
}

func TestPlaytime_SumsAndDegrades(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "v1", "a.json"), `{"title":"a","duration_seconds":90}`)
	writeFile(t, filepath.Join(root, "A", "v2", "b.json"), `{"title":"b","duration_seconds":30}`)
	writeFile(t, filepath.Join(root, "B", "v1", "c.json"), `{"title":"c"}`)           // 没有时长
	writeFile(t, filepath.Join(root, "B", "v2", "d.json"), `not json`)                // 畸形
	writeFile(t, filepath.Join(root, "1_New_Downloads", "v1", "e.json"), `{"duration_seconds":999}`) // 被排除

	rep, err := Playtime(root, []string{"1_New_Downloads"}, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if rep.Videos != 2 || rep.TotalSeconds != 120 {
		t.Fatalf("汇总不符合预期：%+v", rep)
	}
	if rep.Human != "2m" {
		t.Fatalf("期望 2m，实际 %q", rep.Human)
	}
	if len(rep.Failures) != 2 {
		t.Fatalf("期望 2 条失败，实际 %v", rep.Failures)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0s"},
		{59, "59s"},
		{61, "1m 1s"},
		{3600, "1h"},
		{90061, "1d 1h 1m 1s"},
		{7*24*3600 + 1, "1w 1s"},
	}
	for _, c := range cases {
		if got := FormatSeconds(c.in); got != c.want {
			t.Fatalf("FormatSeconds(%d)：期望 %q，实际 %q", c.in, c.want, got)
		}
	}
}

func TestCollectURLs_OrderAndDedupe(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "v1", "a.json"), `{"webpage_url":"https://example.com/1"}`)
	writeFile(t, filepath.Join(root, "A", "v2", "b.json"), `{"webpage_url":"https://example.com/2"}`)
	writeFile(t, filepath.Join(root, "B", "v1", "c.json"), `{"webpage_url":"https://example.com/1"}`) // 重复
	writeFile(t, filepath.Join(root, "B", "v2", "d.json"), `{"title":"no url"}`)

	rep, err := CollectURLs(root, nil, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"https://example.com/1", "https://example.com/2"}
	if !reflect.DeepEqual(rep.URLs, want) {
		t.Fatalf("URL 清单不符合预期：%v", rep.URLs)
	}
	if len(rep.Failures) != 1 || !strings.Contains(rep.Failures[0], "没有 webpage_url") {
		t.Fatalf("失败不符合预期：%v", rep.Failures)
	}

	if err := WriteList(root, &rep); err != nil {
		t.Fatalf("写 list.txt 失败：%v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "list.txt"))
	if err != nil {
		t.Fatalf("读取 list.txt 失败：%v", err)
	}
	if string(b) != "https://example.com/1\nhttps://example.com/2\n" {
		t.Fatalf("list.txt 内容不符合预期：%q", b)
	}
}
