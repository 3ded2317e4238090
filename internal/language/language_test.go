package language

import (
	"sort"
	"testing"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"I started learning Japanese last year", "ja"},
		{"moving to germany and my German is terrible", "de"},
		{"quiero hablar Español con fluidez", "es"},
		{"日本語を勉強しています", "ja"},
		{"no language mentioned here", ""},
	}
	for _, c := range cases {
		if got := Detect(c.text); got != c.want {
			t.Errorf("Detect(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestDetectRegistryOrderBreaksTies(t *testing.T) {
	// Japanese precedes Korean in the registry.
	if got := Detect("Korean vs Japanese, which first?"); got != "ja" {
		t.Fatalf("got %q, want ja", got)
	}
}

func TestAllSubredditsSortedAndDeduped(t *testing.T) {
	subs := AllSubreddits()
	if !sort.StringsAreSorted(subs) {
		t.Fatal("not sorted")
	}
	seen := map[string]bool{}
	for _, s := range subs {
		if seen[s] {
			t.Fatalf("duplicate %q", s)
		}
		seen[s] = true
	}
	for _, want := range []string{"languagelearning", "LearnJapanese"} {
		if !seen[want] {
			t.Fatalf("missing %q", want)
		}
	}
}

func TestByCode(t *testing.T) {
	l, ok := ByCode("ko")
	if !ok || l.Name != "Korean" {
		t.Fatalf("got %+v ok=%v", l, ok)
	}
	if _, ok := ByCode("xx"); ok {
		t.Fatal("unknown code resolved")
	}
}
