package vid

import (
	"errors"
	"testing"
)

func TestExtract_BracketedID(t *testing.T) {
	got, err := Extract("My Title [dQw4w9WgXcQ].mp4")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(got) != "dQw4w9WgXcQ" {
		t.Fatalf("期望 dQw4w9WgXcQ，实际 %q", got)
	}
}

func TestExtract_HyphenUnderscore(t *testing.T) {
	got, err := Extract("x [a-b_c-d_e-f].webm")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(got) != "a-b_c-d_e-f" {
		t.Fatalf("期望 a-b_c-d_e-f，实际 %q", got)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	got, err := Extract("[AAAAAAAAAAA] vs [BBBBBBBBBBB].mkv")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(got) != "AAAAAAAAAAA" {
		t.Fatalf("期望第一个匹配 AAAAAAAAAAA，实际 %q", got)
	}
}

func TestExtract_NoBrackets(t *testing.T) {
	_, err := Extract("dQw4w9WgXcQ.mp4")
	var ne *NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("期望 NotFoundError，实际 err=%v", err)
	}
}

func TestExtract_WrongLength(t *testing.T) {
	// 10 位：不满足平台 ID 的 11 位约束。
	_, err := Extract("x [AAAAAAAAAA].mp4")
	var ne *NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("期望 NotFoundError，实际 err=%v", err)
	}
}
