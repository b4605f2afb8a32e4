package run

import (
	"errors"
	"testing"

	"github.com/John-Robertt/vidcat/internal/domain"
)

func TestGate_NoFailuresProceedsWithoutDecider(t *testing.T) {
	g := NewGate()

	d, err := g.Resolve(nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if d != domain.DecisionProceed {
		t.Fatalf("无失败时期望 proceed，实际 %q", d)
	}

	// 关闸之后收集和再次关闸都非法。
	if err := g.Collect(domain.FailureRecord{Subject: "x"}); err == nil {
		t.Fatalf("关闸后 Collect 应当报错")
	}
	if _, err := g.Resolve(nil); err == nil {
		t.Fatalf("重复 Resolve 应当报错")
	}
}

func TestGate_FailuresRequireDecider(t *testing.T) {
	g := NewGate()
	if err := g.Collect(domain.FailureRecord{Subject: "Music/v1", Code: domain.FailNoMediaFile}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if _, err := g.Resolve(nil); err == nil {
		t.Fatalf("有失败但没有 Decider 应当报错")
	}
}

func TestGate_DeciderSeesFailureCount(t *testing.T) {
	g := NewGate()
	_ = g.Collect(
		domain.FailureRecord{Subject: "b", Code: domain.FailNoMediaFile},
		domain.FailureRecord{Subject: "a", Code: domain.FailNoMetadataSidecar},
	)

	var seen int
	d, err := g.Resolve(DeciderFunc(func(n int) (domain.Decision, error) {
		seen = n
		return domain.DecisionAbort, nil
	}))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if d != domain.DecisionAbort {
		t.Fatalf("期望 abort，实际 %q", d)
	}
	if seen != 2 {
		t.Fatalf("Decider 期望看到 2 条失败，实际 %d", seen)
	}

	// Failures 返回排序后的副本。
	fs := g.Failures()
	if fs[0].Subject != "a" || fs[1].Subject != "b" {
		t.Fatalf("失败未按 Subject 排序：%+v", fs)
	}
}

func TestGate_DeciderErrorPropagates(t *testing.T) {
	g := NewGate()
	_ = g.Collect(domain.FailureRecord{Subject: "x", Code: domain.FailNoMediaFile})

	boom := errors.New("终端读取失败")
	if _, err := g.Resolve(DeciderFunc(func(int) (domain.Decision, error) {
		return "", boom
	})); !errors.Is(err, boom) {
		t.Fatalf("期望透传 Decider 的错误，实际 %v", err)
	}
}

func TestGate_UnknownDecisionRejected(t *testing.T) {
	g := NewGate()
	_ = g.Collect(domain.FailureRecord{Subject: "x", Code: domain.FailNoMediaFile})

	if _, err := g.Resolve(DeciderFunc(func(int) (domain.Decision, error) {
		return domain.Decision("maybe"), nil
	})); err == nil {
		t.Fatalf("未知决策应当报错")
	}
}
