package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vidcat/internal/thumb"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 vidcat.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// DefaultConcurrency 是并发的内置默认值（当配置未指定时）。
	DefaultConcurrency = 4
	// DefaultCatalogName / DefaultFailLogName 是两个产物的默认文件名。
	DefaultCatalogName = "catalog.json"
	DefaultFailLogName = "index_fails.txt"
)

// DefaultExcludeDirs 是默认跳过的顶层目录（下载暂存区，里面还没有完成配对）。
func DefaultExcludeDirs() []string { return []string{"1_New_Downloads"} }

// DefaultMediaExts 是识别为媒体文件的容器扩展名集合。
func DefaultMediaExts() []string { return []string{".mp4", ".mkv", ".webm"} }

// CLIArgs 只包含 CLI 暴露的两项入口（path/backfill），并保留"是否显式指定"的信息。
// 这能保证覆盖优先级可实现：例如 --backfill=false 必须能覆盖 config.backfill=true。
type CLIArgs struct {
	Path string

	Backfill    bool
	BackfillSet bool
}

// FileConfig 对应 vidcat.json 的解析结构。
type FileConfig struct {
	Path         string   `json:"path"`
	ExcludeDirs  []string `json:"exclude_dirs"`
	Concurrency  int      `json:"concurrency"`
	Backfill     *bool    `json:"backfill"`
	BackfillArgv []string `json:"backfill_argv"`
	MediaExts    []string `json:"media_exts"`
	CatalogName  string   `json:"catalog_name"`
	FailLogName  string   `json:"fail_log_name"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
// （实现层直接消费，不再做二次默认/优先级判断，也没有进程级可变状态）。
type EffectiveConfig struct {
	Path string

	ExcludeDirs []string
	Concurrency int

	// Backfill 关闭时，缩略图解析只走 1-2 步（不调用外部命令）。
	Backfill     bool
	BackfillArgv []string

	MediaExts []string

	CatalogName string
	FailLogName string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按文档约定发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/vidcat.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/vidcat.json（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：
// - path：CLI path > config path
// - backfill：CLI --backfill/--backfill=false > config > 默认 true
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/vidcat.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, "vidcat.json")

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}

		return merge(absPath, cli, fc, cfgPath)
	}

	// CLI 没给 path：必须读取 <cwd>/vidcat.json，且其中必须包含 path。
	cfgPath := filepath.Join(cwdAbs, "vidcat.json")
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// backfill：CLI > config > 默认 true
	backfill := true
	if cli.BackfillSet {
		backfill = cli.Backfill
	} else if fc.Backfill != nil {
		backfill = *fc.Backfill
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 文档约定：范围建议 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	excludeDirs := fc.ExcludeDirs
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs()
	}

	mediaExts := fc.MediaExts
	if mediaExts == nil {
		mediaExts = DefaultMediaExts()
	}
	for i, ext := range mediaExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || !strings.HasPrefix(ext, ".") {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("media_exts 的每一项必须以 '.' 开头，实际是 %q", fc.MediaExts[i])}
		}
		mediaExts[i] = ext
	}

	argv := fc.BackfillArgv
	if argv == nil {
		argv = thumb.DefaultArgv()
	} else if len(argv) == 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("backfill_argv 不能是空数组")}
	}

	catalogName, err := artifactName(fc.CatalogName, DefaultCatalogName)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !strings.HasSuffix(catalogName, ".json") {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("catalog_name 必须以 .json 结尾，实际是 %q", catalogName)}
	}
	failLogName, err := artifactName(fc.FailLogName, DefaultFailLogName)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return EffectiveConfig{
		Path:         absPath,
		ExcludeDirs:  append([]string(nil), excludeDirs...),
		Concurrency:  concurrency,
		Backfill:     backfill,
		BackfillArgv: append([]string(nil), argv...),
		MediaExts:    mediaExts,
		CatalogName:  catalogName,
		FailLogName:  failLogName,
	}, nil
}

// artifactName 校验产物文件名：只允许纯文件名，不允许路径分隔/穿越。
func artifactName(name, def string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return def, nil
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("产物文件名不能包含路径：%q", name)
	}
	return name, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
