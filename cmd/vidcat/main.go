package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/vidcat/internal/app/run"
	"github.com/John-Robertt/vidcat/internal/config"
	"github.com/John-Robertt/vidcat/internal/domain"
	"github.com/John-Robertt/vidcat/internal/inspect"
	"github.com/John-Robertt/vidcat/internal/thumb"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	var code int
	switch args[0] {
	case "build":
		code = buildCmd(args[1:])
	case "check":
		code = checkCmd(args[1:])
	case "playtime":
		code = playtimeCmd(args[1:])
	case "list":
		code = listCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

func buildCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printBuildUsage()
			return 0
		}
	}

	ba, err := parseBuildArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printBuildUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cwdAbs, _ := filepath.Abs(cwd)

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Path:        ba.Path,
		Backfill:    ba.Backfill,
		BackfillSet: ba.BackfillSet,
	})
	if err != nil {
		emitReport(reportForConfigError(cwdAbs, ba, err))
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	deps := run.Deps{
		Decider:  terminalDecider{in: bufio.NewReader(os.Stdin), w: os.Stderr},
		Observer: obs,
	}
	if eff.Backfill {
		deps.Backfiller = thumb.CommandBackfiller{Argv: eff.BackfillArgv}
	}

	rr, err := run.Execute(context.Background(), eff, deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "运行失败：%v\n", err)
		emitReport(rr)
		return 1
	}

	emitReport(rr)
	if interactive {
		emitLocations(progressW, rr)
	}
	if rr.Decision == domain.DecisionAbort {
		return 1
	}
	return 0
}

// terminalDecider 在 stderr 上向操作员提问，从 stdin 读一行决策 token。
// 无法识别的输入按契约降级为 proceed 并给出警告。
type terminalDecider struct {
	in *bufio.Reader
	w  io.Writer
}

func (d terminalDecider) Decide(failureCount int) (domain.Decision, error) {
	fmt.Fprintf(d.w, "\n发现 %d 条失败。\n", failureCount)
	fmt.Fprintln(d.w, "  [1] 继续生成 catalog（失败的视频被排除）")
	fmt.Fprintln(d.w, "  [2] 终止，写出失败日志，不触碰已有 catalog")
	fmt.Fprint(d.w, "请选择 [1/2]: ")

	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		// EOF（例如管道输入已尽）：当作空输入处理，按契约降级为 proceed。
		line = ""
	}
	token := strings.TrimSpace(line)

	dec, ok := domain.ParseDecision(token)
	if !ok {
		fmt.Fprintf(d.w, "无法识别的输入 %q，按 [1] 继续生成\n", token)
	}
	return dec, nil
}

type buildArgs struct {
	Path string

	Backfill    bool
	BackfillSet bool
}

func parseBuildArgs(args []string) (buildArgs, error) {
	ba := buildArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--backfill":
			ba.Backfill = true
			ba.BackfillSet = true
		case strings.HasPrefix(a, "--backfill="):
			v := strings.TrimPrefix(a, "--backfill=")
			switch v {
			case "true":
				ba.Backfill = true
			case "false":
				ba.Backfill = false
			default:
				return buildArgs{}, fmt.Errorf("--backfill 只能是 true 或 false，实际是 %q", v)
			}
			ba.BackfillSet = true
		case strings.HasPrefix(a, "-"):
			return buildArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ba.Path != "" {
				return buildArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ba.Path, a)
			}
			ba.Path = a
		}
	}

	return ba, nil
}

// parsePathOnly 供 check/playtime/list 使用：只接受一个可选的位置参数。
func parsePathOnly(args []string) (string, error) {
	path := ""
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return "", fmt.Errorf("未知参数 %q", a)
		}
		if path != "" {
			return "", fmt.Errorf("重复的 path：%q 与 %q", path, a)
		}
		path = a
	}
	return path, nil
}

func loadEffForInspect(args []string) (config.EffectiveConfig, int) {
	path, err := parsePathOnly(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n", err)
		return config.EffectiveConfig{}, 2
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return config.EffectiveConfig{}, 1
	}
	eff, err := config.LoadEffective(cwd, config.CLIArgs{Path: path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误（%s）：%v\n", config.Code(err), err)
		return config.EffectiveConfig{}, 1
	}
	return eff, 0
}

func checkCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			fmt.Fprintln(os.Stdout, "用法：vidcat check [path]")
			return 0
		}
	}
	eff, code := loadEffForInspect(args)
	if code != 0 {
		return code
	}

	rep, err := inspect.Check(eff.Path, eff.CatalogName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check 失败：%v\n", err)
		return 1
	}

	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "检查 %d 条记录，发现 %d 条问题\n", rep.Total, len(rep.Problems))
		for _, p := range rep.Problems {
			fmt.Fprintln(os.Stdout, "  "+p)
		}
	} else {
		_ = json.NewEncoder(os.Stdout).Encode(rep)
	}
	if rep.OK() {
		return 0
	}
	return 1
}

func playtimeCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			fmt.Fprintln(os.Stdout, "用法：vidcat playtime [path]")
			return 0
		}
	}
	eff, code := loadEffForInspect(args)
	if code != 0 {
		return code
	}

	rep, err := inspect.Playtime(eff.Path, eff.ExcludeDirs, eff.MediaExts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "playtime 失败：%v\n", err)
		return 1
	}

	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "总时长：%s（%d 条，共 %d 秒）\n", rep.Human, rep.Videos, rep.TotalSeconds)
		for _, f := range rep.Failures {
			fmt.Fprintln(os.Stderr, "  "+f)
		}
	} else {
		_ = json.NewEncoder(os.Stdout).Encode(rep)
	}
	return 0
}

func listCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			fmt.Fprintln(os.Stdout, "用法：vidcat list [path]")
			return 0
		}
	}
	eff, code := loadEffForInspect(args)
	if code != 0 {
		return code
	}

	rep, err := inspect.CollectURLs(eff.Path, eff.ExcludeDirs, eff.MediaExts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list 失败：%v\n", err)
		return 1
	}
	if err := inspect.WriteList(eff.Path, &rep); err != nil {
		fmt.Fprintf(os.Stderr, "写入 list.txt 失败：%v\n", err)
		return 1
	}

	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "收集 %d 个 URL → %s\n", len(rep.URLs), rep.ListPath)
		for _, f := range rep.Failures {
			fmt.Fprintln(os.Stderr, "  "+f)
		}
	} else {
		_ = json.NewEncoder(os.Stdout).Encode(rep)
	}
	return 0
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  vidcat build [path] [--backfill[=true|false]]
  vidcat check [path]
  vidcat playtime [path]
  vidcat list [path]

命令：
  build     扫描媒体库并生成 catalog.json / catalog.html
  check     校验既有 catalog 与磁盘内容的一致性
  playtime  汇总所有元数据 sidecar 的总时长
  list      收集所有 webpage_url 到 list.txt

使用 "vidcat build --help" 查看详细说明。
`)
}

func printBuildUsage() {
	fmt.Fprint(os.Stdout, `用法：
  vidcat build [path] [--backfill[=true|false]]

参数：
  --backfill  调用外部命令回填缺失的缩略图（默认开启）；
              使用 --backfill=false 关闭回填（也可覆盖配置中的 backfill=true）
  -h, --help  显示帮助

path 省略时从当前目录的 vidcat.json 读取。
`)
}

func emitReport(rr domain.BuildReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：indexed=%d excluded=%d warnings=%d decision=%s\n",
			rr.Summary.Indexed, rr.Summary.Excluded, rr.Summary.Warnings, rr.Decision,
		)
		for _, f := range rr.Failures {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", f.Subject, f.Code, f.Reason)
		}
		for _, w := range rr.Warnings {
			fmt.Fprintln(os.Stderr, "警告: "+w)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 BuildReport JSON（摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：indexed=%d excluded=%d warnings=%d decision=%s\n",
		rr.Summary.Indexed, rr.Summary.Excluded, rr.Summary.Warnings, rr.Decision,
	)
}

func reportForConfigError(cwdAbs string, ba buildArgs, err error) domain.BuildReport {
	now := time.Now().UTC()
	rr := domain.BuildReport{
		Root:       cwdAbs,
		DryRun:     ba.BackfillSet && !ba.Backfill,
		StartedAt:  now,
		FinishedAt: now,
		Decision:   domain.DecisionAbort,
		Failures: []domain.FailureRecord{{
			Subject: cwdAbs,
			Code:    config.Code(err),
			Reason:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, rr domain.BuildReport) {
	// 这两行用于降低"完成后不知道产物在哪"的摩擦，且不影响 stdout JSON 契约。
	if w == nil {
		return
	}
	if rr.CatalogPath != "" {
		fmt.Fprintf(w, "catalog: %s\n", rr.CatalogPath)
		fmt.Fprintf(w, "html: %s\n", strings.TrimSuffix(rr.CatalogPath, ".json")+".html")
	}
	if rr.FailLogPath != "" {
		fmt.Fprintf(w, "fail log: %s\n", rr.FailLogPath)
	}
}
