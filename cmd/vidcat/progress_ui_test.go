package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/John-Robertt/vidcat/internal/domain"
)

func TestParseBuildArgs(t *testing.T) {
	ba, err := parseBuildArgs([]string{"/lib", "--backfill=false"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ba.Path != "/lib" || ba.Backfill || !ba.BackfillSet {
		t.Fatalf("解析结果不符合预期：%+v", ba)
	}

	if _, err := parseBuildArgs([]string{"--backfill=maybe"}); err == nil {
		t.Fatalf("非法的 --backfill 值应当报错")
	}
	if _, err := parseBuildArgs([]string{"a", "b"}); err == nil {
		t.Fatalf("重复的 path 应当报错")
	}
}

func TestTerminalDecider(t *testing.T) {
	cases := []struct {
		in       string
		want     domain.Decision
		warnsOut bool
	}{
		{"1\n", domain.DecisionProceed, false},
		{"2\n", domain.DecisionAbort, false},
		{"yes\n", domain.DecisionProceed, true},
		{"", domain.DecisionProceed, true}, // EOF
	}
	for _, c := range cases {
		var w bytes.Buffer
		d := terminalDecider{in: bufio.NewReader(strings.NewReader(c.in)), w: &w}
		got, err := d.Decide(3)
		if err != nil {
			t.Fatalf("输入 %q：不期望错误 %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("输入 %q：期望 %q，实际 %q", c.in, c.want, got)
		}
		if warned := strings.Contains(w.String(), "无法识别的输入"); warned != c.warnsOut {
			t.Fatalf("输入 %q：警告输出不符合预期：%q", c.in, w.String())
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 5); got != "ab..." {
		t.Fatalf("期望 ab...，实际 %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Fatalf("期望 abc，实际 %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(3723 * 1e9); got != "01:02:03" {
		t.Fatalf("期望 01:02:03，实际 %q", got)
	}
}
