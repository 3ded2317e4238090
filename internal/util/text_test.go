package util

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("  a\t b\n\nc  "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("hello", 3); got != "hel…" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("日本語を勉強", 3); got != "日本語…" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateList(t *testing.T) {
	in := []string{"a", "b", "c"}
	if got := TruncateList(in, 2); len(got) != 2 || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
	if got := TruncateList(in, 5); len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}
