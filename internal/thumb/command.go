package thumb

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/John-Robertt/vidcat/internal/domain"
)

// CommandBackfiller 通过外部命令实现 Backfiller（生产环境是 yt-dlp）。
//
// Argv 是命令模板；占位符 {id} / {dir} 在执行前替换。
// 这是整条流水线里唯一会碰网络的一步，且永远由外部命令代劳：
// 核心自身不发起网络调用，也不管理该命令的认证/cookie。
type CommandBackfiller struct {
	Argv []string
}

func (c CommandBackfiller) Backfill(ctx context.Context, id domain.VideoID, dir string) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("回填命令为空")
	}

	argv := make([]string, len(c.Argv))
	for i, a := range c.Argv {
		a = strings.ReplaceAll(a, "{id}", string(id))
		a = strings.ReplaceAll(a, "{dir}", dir)
		argv[i] = a
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// 外部命令的输出不属于本工具的 stdout/stderr 契约，全部丢弃。
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// DefaultArgv 是内置的 yt-dlp 回填命令模板（只抓缩略图并转成 jpg，
// 写入视频目录；"--" 防止 ID 被当作参数）。
func DefaultArgv() []string {
	return []string{
		"yt-dlp",
		"--skip-download",
		"--convert-thumbnails", "jpg",
		"--write-thumbnail",
		"-P", "{dir}",
		"--", "{id}",
	}
}
