package run

import (
	"errors"

	"github.com/John-Robertt/vidcat/internal/domain"
)

// Decider 是注入的"操作员决策"能力：给定失败数，返回 proceed/abort。
// 交互本身（终端提示、token 解析）在 CLI 层；核心只依赖这个接口，
// 因此 Failure Gate 不需要真实终端就能确定性测试。
type Decider interface {
	Decide(failureCount int) (domain.Decision, error)
}

// DeciderFunc 让普通函数充当 Decider（测试里最常用）。
type DeciderFunc func(failureCount int) (domain.Decision, error)

func (f DeciderFunc) Decide(failureCount int) (domain.Decision, error) {
	return f(failureCount)
}

type gateState int

const (
	gateCollecting gateState = iota
	gateAwaitingDecision
	gateResolved
)

// Gate 是失败闸门：整次运行只有一个，状态只向前走。
//
// COLLECTING --（Resolve 且有失败）--> AWAITING_DECISION --（决策）--> RESOLVED
// COLLECTING --（Resolve 且无失败）-----------------------------> RESOLVED
//
// 任何产物写入都必须发生在 RESOLVED 之后。
type Gate struct {
	state    gateState
	failures []domain.FailureRecord
}

func NewGate() *Gate {
	return &Gate{state: gateCollecting}
}

// Collect 累积失败记录；只在 COLLECTING 状态下合法。
func (g *Gate) Collect(fs ...domain.FailureRecord) error {
	if g.state != gateCollecting {
		return errors.New("failure gate 已经离开收集状态")
	}
	g.failures = append(g.failures, fs...)
	return nil
}

// Failures 返回按 Subject 排序后的失败记录副本。
func (g *Gate) Failures() []domain.FailureRecord {
	out := append([]domain.FailureRecord(nil), g.failures...)
	domain.SortFailures(out)
	return out
}

// Resolve 关闸并返回最终决策。
// 无失败：直接 RESOLVED，恒为 proceed（不询问操作员）。
// 有失败：进入 AWAITING_DECISION，由注入的 Decider 给出 proceed/abort。
func (g *Gate) Resolve(d Decider) (domain.Decision, error) {
	if g.state == gateResolved {
		return "", errors.New("failure gate 已经关闭")
	}

	if len(g.failures) == 0 {
		g.state = gateResolved
		return domain.DecisionProceed, nil
	}

	g.state = gateAwaitingDecision
	if d == nil {
		return "", errors.New("存在失败但没有提供 Decider")
	}
	decision, err := d.Decide(len(g.failures))
	if err != nil {
		return "", err
	}
	switch decision {
	case domain.DecisionProceed, domain.DecisionAbort:
		g.state = gateResolved
		return decision, nil
	default:
		return "", errors.New("Decider 返回了未知决策：" + string(decision))
	}
}
