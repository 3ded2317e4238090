package responder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadscout/internal/llm"
	"leadscout/internal/model"
)

type fakeClient struct {
	worthyReply string
	worthyErr   error
	draftReply  string
	draftErr    error
	worthyCalls int
	draftCalls  int
}

func (f *fakeClient) Configured() bool { return true }

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	if strings.Contains(req.Prompt, `"worthy"`) {
		f.worthyCalls++
		return f.worthyReply, f.worthyErr
	}
	f.draftCalls++
	return f.draftReply, f.draftErr
}

func lead() *model.Lead {
	return &model.Lead{
		PostID:    "p1",
		Subreddit: "LearnJapanese",
		Title:     "afraid to speak",
		Body:      "freeze up every time",
		Category:  model.CategoryAnxiety,
	}
}

func TestGenerateWorthyGetsBothDrafts(t *testing.T) {
	fc := &fakeClient{
		worthyReply: `{"worthy": true, "reason": "genuine struggle"}`,
		draftReply:  "hang in there",
	}
	r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", true)
	l := lead()
	r.Generate(context.Background(), l)
	if l.CommentWorthy == nil || !*l.CommentWorthy {
		t.Fatal("lead not marked worthy")
	}
	if l.WorthyReason != "genuine struggle" {
		t.Fatalf("reason %q", l.WorthyReason)
	}
	if l.PublicDraft == "" || l.DMDraft == "" {
		t.Fatalf("drafts missing: %+v", l)
	}
	if fc.draftCalls != 2 {
		t.Fatalf("draft calls %d", fc.draftCalls)
	}
}

func TestGenerateNotWorthySkipsDrafts(t *testing.T) {
	fc := &fakeClient{worthyReply: `{"worthy": false, "reason": "reads as spam"}`}
	r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", true)
	l := lead()
	r.Generate(context.Background(), l)
	if l.CommentWorthy == nil || *l.CommentWorthy {
		t.Fatal("lead should be unworthy")
	}
	if fc.draftCalls != 0 {
		t.Fatalf("drafted an unworthy lead, calls=%d", fc.draftCalls)
	}
}

func TestGenerateGateDisabledSkipsWorthinessCall(t *testing.T) {
	fc := &fakeClient{draftReply: "d"}
	r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", false)
	l := lead()
	r.Generate(context.Background(), l)
	if fc.worthyCalls != 0 {
		t.Fatalf("gate disabled but %d worthiness calls were made", fc.worthyCalls)
	}
	if l.CommentWorthy != nil {
		t.Fatalf("gate disabled must leave verdict unset, got %v", *l.CommentWorthy)
	}
	if l.WorthyReason != "" {
		t.Fatalf("reason %q", l.WorthyReason)
	}
	if l.PublicDraft != "d" || l.DMDraft != "d" {
		t.Fatalf("drafts missing: %+v", l)
	}
}

func TestGenerateWorthinessFailureDefaultsWorthy(t *testing.T) {
	for name, fc := range map[string]*fakeClient{
		"call error":  {worthyErr: errors.New("quota"), draftReply: "d"},
		"unparseable": {worthyReply: "cannot decide", draftReply: "d"},
	} {
		r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", true)
		l := lead()
		r.Generate(context.Background(), l)
		if l.CommentWorthy == nil || !*l.CommentWorthy {
			t.Fatalf("%s: failure must default worthy", name)
		}
		if !strings.Contains(l.WorthyReason, "defaulting to worthy") {
			t.Fatalf("%s: reason %q", name, l.WorthyReason)
		}
		if fc.draftCalls != 2 {
			t.Fatalf("%s: drafts not attempted, calls=%d", name, fc.draftCalls)
		}
	}
}

func TestGenerateDraftFailureLeavesEmpty(t *testing.T) {
	fc := &fakeClient{
		worthyReply: `{"worthy": true, "reason": "ok"}`,
		draftErr:    errors.New("quota"),
	}
	r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", true)
	l := lead()
	r.Generate(context.Background(), l)
	if l.PublicDraft != "" || l.DMDraft != "" {
		t.Fatalf("failed drafts must be empty: %+v", l)
	}
}

func TestGenerateAllCountsSkipped(t *testing.T) {
	fc := &fakeClient{worthyReply: `{"worthy": false, "reason": "no"}`}
	r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", true)
	leads := []*model.Lead{lead(), lead(), lead()}
	skipped, err := r.GenerateAll(context.Background(), leads)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 3 {
		t.Fatalf("skipped %d, want 3", skipped)
	}
}

func TestGenerateAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc := &fakeClient{worthyReply: `{"worthy": true, "reason": "ok"}`, draftReply: "d"}
	r := New(fc, "gemma-3-27b-it", "gemini-2.0-flash", true)
	if _, err := r.GenerateAll(ctx, []*model.Lead{lead()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if fc.worthyCalls != 0 {
		t.Fatal("generated after cancellation")
	}
}
