package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/vidcat/internal/app/run"
	"github.com/John-Robertt/vidcat/internal/config"
	"github.com/John-Robertt/vidcat/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：长时间无条目完成时也会定期输出一行（回填外部命令可能很慢）
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total    int
	done     int
	indexed  int
	excluded int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	mode := "backfill off"
	modeHint := " (不调用外部命令)"
	if eff.Backfill {
		mode = "backfill on"
		modeHint = ""
	}

	fmt.Fprintf(p.w, "[%s] vidcat build (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  media_exts: %s\n", formatStringListJSON(eff.MediaExts))
	fmt.Fprintf(p.w, "  exclude_dirs: %s\n", formatStringListJSON(eff.ExcludeDirs))
	if eff.Backfill {
		fmt.Fprintf(p.w, "  backfill_argv: %s\n", truncate(strings.Join(eff.BackfillArgv, " "), 120))
	}

	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  catalog: %s\n", filepath.Join(eff.Path, eff.CatalogName))
	fmt.Fprintf(p.w, "  失败日志（仅 abort）: %s\n", filepath.Join(eff.Path, eff.FailLogName))
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	p.mu.Unlock()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: dirs=%d failures=%d (%s)\n",
			intField(fields, "dirs"), intField(fields, "failures"), formatShortDuration(dur),
		)
	case "process":
		fmt.Fprintf(p.w, "处理: workers=%d indexed=%d excluded=%d warnings=%d (%s)\n",
			intField(fields, "workers"),
			intField(fields, "indexed"),
			intField(fields, "excluded"),
			intField(fields, "warnings"),
			formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, subject, status string, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	label := strings.ToUpper(status)
	switch status {
	case domain.StatusIndexed:
		p.indexed++
		label = "OK"
	case domain.StatusExcluded:
		p.excluded++
		label = "EXCL"
	}

	fmt.Fprintf(p.w, "[%d/%d] %s %s (%s)\n", idx, total, truncate(subject, 120), label, formatShortDuration(dur))
	p.lastPrinted = time.Now()

	if !p.tickerStarted && p.done < p.total {
		p.startTickerLocked()
	}
	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) OnDecision(failureCount int, decision domain.Decision) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if failureCount == 0 {
		fmt.Fprintln(p.w, "无失败，直接生成")
	} else {
		fmt.Fprintf(p.w, "失败闸门: failures=%d decision=%s\n", failureCount, decision)
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnProgress(done, total, indexed, excluded int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "进度: done=%d/%d indexed=%d excluded=%d elapsed=%s\n",
		done, total, indexed, excluded, formatElapsed(elapsed),
	)
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				// 已完成：安全退出（OnItemDone 会 close stopCh，但这里也做兜底）。
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}

				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					elapsed := time.Since(p.startedAt)
					fmt.Fprintf(p.w, "进度: done=%d/%d indexed=%d excluded=%d elapsed=%s\n",
						p.done, p.total, p.indexed, p.excluded, formatElapsed(elapsed),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-p.stopCh:
				return
			}
		}
	}()
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
