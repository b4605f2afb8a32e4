package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/vidcat/internal/domain"
)

var testMediaExts = []string{".mp4", ".mkv", ".webm"}

func TestScanLibrary_ExcludeTopLevel(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "1_New_Downloads", "v1", "x [AAAAAAAAAAA].mp4"))
	touch(t, filepath.Join(root, "Music", "v1", "x [BBBBBBBBBBB].mp4"))

	dirs, failures, err := ScanLibrary(root, []string{"1_New_Downloads"}, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("不期望失败：%v", failures)
	}
	if len(dirs) != 1 {
		t.Fatalf("期望 1 个视频目录，实际 %d", len(dirs))
	}
	if dirs[0].Category != "Music" || dirs[0].RelDir != "Music/v1" {
		t.Fatalf("目录不符合预期：%+v", dirs[0])
	}
}

func TestScanLibrary_LexicographicOrder(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "B", "v2", "x.mp4"))
	touch(t, filepath.Join(root, "B", "v1", "x.mp4"))
	touch(t, filepath.Join(root, "A", "v9", "x.mp4"))

	dirs, _, err := ScanLibrary(root, nil, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	want := []string{"A/v9", "B/v1", "B/v2"}
	if len(dirs) != len(want) {
		t.Fatalf("期望 %d 个视频目录，实际 %d", len(want), len(dirs))
	}
	for i := range want {
		if dirs[i].RelDir != want[i] {
			t.Fatalf("第 %d 个目录期望 %q，实际 %q", i, want[i], dirs[i].RelDir)
		}
	}
}

func TestScanLibrary_ClassifyRoles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Music", "v1")

	touch(t, filepath.Join(dir, "a [AAAAAAAAAAA].mp4"))
	touch(t, filepath.Join(dir, "a [AAAAAAAAAAA].json"))
	touch(t, filepath.Join(dir, "a [AAAAAAAAAAA].jpg"))
	touch(t, filepath.Join(dir, "cover.jpeg"))
	touch(t, filepath.Join(dir, "notes.txt")) // 不属于任何角色

	dirs, _, err := ScanLibrary(root, nil, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("期望 1 个视频目录，实际 %d", len(dirs))
	}
	d := dirs[0]
	if len(d.Media) != 1 || len(d.Sidecars) != 1 || len(d.Images) != 2 {
		t.Fatalf("角色分类不符合预期：%+v", d)
	}
}

func TestScanLibrary_MultipleMediaFirstWins(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Music", "v1")

	// 大小写与前缀不同的两个媒体文件：平局裁决必须取字典序第一个。
	touch(t, filepath.Join(dir, "b copy [AAAAAAAAAAA].mp4"))
	touch(t, filepath.Join(dir, "B [AAAAAAAAAAA].mp4"))

	dirs, _, err := ScanLibrary(root, nil, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got := dirs[0].MediaFile(); got != "B [AAAAAAAAAAA].mp4" {
		t.Fatalf("期望选中 %q，实际 %q", "B [AAAAAAAAAAA].mp4", got)
	}
}

func TestScanLibrary_ExtCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Music", "v1", "X [AAAAAAAAAAA].MP4"))

	dirs, _, err := ScanLibrary(root, nil, testMediaExts)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(dirs) != 1 || len(dirs[0].Media) != 1 {
		t.Fatalf("期望识别大写扩展名：%+v", dirs)
	}
}

func TestScanLibrary_RootMissingIsFatal(t *testing.T) {
	_, _, err := ScanLibrary(filepath.Join(t.TempDir(), "nope"), nil, testMediaExts)
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestScanLibrary_UnreadableCategoryIsFailure(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root 用户忽略目录权限，跳过")
	}
	root := t.TempDir()

	touch(t, filepath.Join(root, "Music", "v1", "x.mp4"))
	locked := filepath.Join(root, "Locked")
	if err := os.MkdirAll(locked, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("修改权限失败：%v", err)
	}
	defer os.Chmod(locked, 0o755)

	dirs, failures, err := ScanLibrary(root, nil, testMediaExts)
	if err != nil {
		t.Fatalf("不期望运行级错误：%v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("期望其余目录继续被扫描，实际 %d", len(dirs))
	}
	if len(failures) != 1 || failures[0].Code != domain.FailFilesystemError {
		t.Fatalf("期望 1 条 filesystem_error，实际：%v", failures)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
