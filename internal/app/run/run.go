package run

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/John-Robertt/vidcat/internal/app"
	"github.com/John-Robertt/vidcat/internal/catalog"
	"github.com/John-Robertt/vidcat/internal/config"
	"github.com/John-Robertt/vidcat/internal/domain"
	"github.com/John-Robertt/vidcat/internal/scan"
	"github.com/John-Robertt/vidcat/internal/sidecar"
	"github.com/John-Robertt/vidcat/internal/thumb"
	"github.com/John-Robertt/vidcat/internal/vid"
)

// Deps 是 Execute 的注入能力集合。
type Deps struct {
	// Backfiller 为 nil 或 eff.Backfill=false 时，缩略图解析跳过外部命令。
	Backfiller thumb.Backfiller
	// Decider 在失败非空时必须提供（Failure Gate 需要操作员决策）。
	Decider Decider
	// Observer 可以为 nil（不输出任何进度）。
	Observer Observer
}

// Execute 执行一次 catalog 构建，返回对外稳定的 BuildReport。
//
// 错误被尽量"降级"为视频级失败（单条失败不影响其他视频）；
// 返回非 nil error 的只有运行级致命条件：根目录无法列出、产物写入失败、
// ctx 取消。操作员 abort 不是 error，而是 report.Decision=abort。
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) (domain.BuildReport, error) {
	started := time.Now().UTC()

	obs := deps.Observer
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.BuildReport{
		Root:      eff.Path,
		DryRun:    !eff.Backfill,
		StartedAt: started,
		Decision:  domain.DecisionProceed,
		Failures:  []domain.FailureRecord{},
		Warnings:  []string{},
	}

	gate := NewGate()

	scanStarted := time.Now()
	dirs, scanFailures, err := scan.ScanLibrary(eff.Path, eff.ExcludeDirs, eff.MediaExts)
	if err != nil {
		code := domain.ErrCodeIOFailed
		if errors.Is(err, fs.ErrNotExist) {
			code = domain.ErrCodeRootNotFound
		}
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, fmt.Errorf("%s：%w", code, err)
	}
	_ = gate.Collect(scanFailures...)

	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"dirs":     len(dirs),
			"failures": len(scanFailures),
		}, time.Since(scanStarted))
	}

	// 执行阶段：按视频目录并发（worker pool），目录内的
	// 扫描→读 sidecar→解析缩略图保持串行（回填产物要对同目录的
	// 后续匹配可见）。结果按输入下标落位，完成顺序不影响输出。
	resolver := thumb.Resolver{}
	if eff.Backfill {
		resolver.Backfill = deps.Backfiller
	}

	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}

	type dirResult struct {
		rec   *domain.VideoRecord
		fail  *domain.FailureRecord
		warns []string
		dur   time.Duration
	}
	results := make([]dirResult, len(dirs))

	procStarted := time.Now()
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				oneStarted := time.Now()
				rec, fail, warns := processOne(ctx, resolver, dirs[i])
				results[i] = dirResult{rec: rec, fail: fail, warns: warns, dur: time.Since(oneStarted)}
			}
		}()
	}

feed:
	for i := range dirs {
		// 取消信号在目录之间检查：一次完整运行可能触发上百次外部命令。
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, err
	}

	// 汇总：按扫描顺序（显式的字典序）收敛结果。
	// 重复 ID 的平局裁决：扫描顺序里第一个出现的记录胜出，后来者降级为警告。
	records := make([]domain.VideoRecord, 0, len(dirs))
	firstSeen := make(map[string]string, len(dirs))

	for i, res := range results {
		subject := dirs[i].RelDir
		status := domain.StatusIndexed

		rr.Warnings = append(rr.Warnings, res.warns...)

		switch {
		case res.fail != nil:
			_ = gate.Collect(*res.fail)
			subject = res.fail.Subject
			status = domain.StatusExcluded
		case res.rec != nil:
			if prev, dup := firstSeen[res.rec.ID]; dup {
				rr.Warnings = append(rr.Warnings, fmt.Sprintf(
					"%s：重复的 ID %s（首次出现于 %s），该目录被忽略",
					dirs[i].RelDir, res.rec.ID, prev))
				status = domain.StatusExcluded
			} else {
				firstSeen[res.rec.ID] = dirs[i].RelDir
				records = append(records, *res.rec)
			}
		}

		if obs != nil {
			obs.OnItemDone(i+1, len(dirs), subject, status, res.dur)
		}
	}
	rr.Summary.Indexed = len(records)

	if obs != nil {
		obs.OnPhaseDone("process", map[string]any{
			"workers":  workers,
			"indexed":  len(records),
			"excluded": len(gate.Failures()),
			"warnings": len(rr.Warnings),
		}, time.Since(procStarted))
	}

	// Failure Gate：任何产物写入都必须发生在关闸之后。
	decision, err := gate.Resolve(deps.Decider)
	if err != nil {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, err
	}
	rr.Decision = decision
	rr.Failures = gate.Failures()
	if obs != nil {
		obs.OnDecision(len(rr.Failures), decision)
	}

	if decision == domain.DecisionAbort {
		// 只写失败日志；catalog 不写、不覆盖。
		logPath, err := catalog.WriteFailLog(eff.Path, eff.FailLogName, rr.Failures)
		if err != nil {
			rr.FinishedAt = time.Now().UTC()
			rr.Finalize()
			return rr, fmt.Errorf("写入失败日志失败：%w", err)
		}
		rr.FailLogPath = logPath
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, nil
	}

	// proceed：catalog 全量落盘，过期的失败日志删除。
	doc := app.BuildCatalog(time.Now(), records)
	catalogPath, err := catalog.WriteJSON(eff.Path, eff.CatalogName, doc)
	if err != nil {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, fmt.Errorf("写入 catalog 失败：%w", err)
	}
	if _, err := catalog.WriteHTML(eff.Path, eff.CatalogName, doc); err != nil {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, fmt.Errorf("写入 catalog.html 失败：%w", err)
	}
	if err := catalog.RemoveFailLog(eff.Path, eff.FailLogName); err != nil {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, fmt.Errorf("删除过期失败日志失败：%w", err)
	}

	rr.CatalogPath = catalogPath
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr, nil
}

// processOne 处理一个视频目录：恰好产出一条 VideoRecord 或一条 FailureRecord，
// 绝不同时、也绝不都没有；缩略图回填失败只产生软警告。
func processOne(ctx context.Context, resolver thumb.Resolver, d domain.VideoDirectory) (*domain.VideoRecord, *domain.FailureRecord, []string) {
	mediaName := d.MediaFile()
	if mediaName == "" {
		return nil, &domain.FailureRecord{
			Subject: d.RelDir,
			Code:    domain.FailNoMediaFile,
			Reason:  "目录里没有媒体文件",
		}, nil
	}
	relMedia := path.Join(d.RelDir, mediaName)

	sidecarName := d.SidecarFile()
	if sidecarName == "" {
		return nil, &domain.FailureRecord{
			Subject: d.RelDir,
			Code:    domain.FailNoMetadataSidecar,
			Reason:  "目录里没有元数据 sidecar",
		}, nil
	}

	id, err := vid.Extract(mediaName)
	if err != nil {
		return nil, &domain.FailureRecord{
			Subject: relMedia,
			Code:    domain.FailNoIdentifier,
			Reason:  "无法从媒体文件名解析出平台 ID",
		}, nil
	}

	rec, err := sidecar.Load(filepath.Join(d.AbsDir, sidecarName))
	if err != nil {
		return nil, &domain.FailureRecord{
			Subject: relMedia,
			Code:    domain.FailInvalidMetadata,
			Reason:  fmt.Sprintf("sidecar 无法解析：%v", err),
		}, nil
	}
	if err := rec.Validate(); err != nil {
		return nil, &domain.FailureRecord{
			Subject: relMedia,
			Code:    domain.FailMissingRequiredField,
			Reason:  err.Error(),
		}, nil
	}

	thumbName, warns := resolver.Resolve(ctx, d, mediaName, id)
	thumbnail := ""
	if thumbName != "" {
		thumbnail = path.Join(d.RelDir, thumbName)
	}

	return &domain.VideoRecord{
		ID:          string(id),
		Title:       rec.Title,
		Uploader:    rec.UploaderName(),
		UploadDate:  rec.UploadDate,
		Duration:    rec.DurationSeconds,
		ViewCount:   rec.ViewCount,
		Description: rec.Description,
		Tags:        rec.Tags,
		Categories:  rec.Categories,
		Genre:       d.Category,
		Path:        relMedia,
		Thumbnail:   thumbnail,
	}, nil, warns
}
