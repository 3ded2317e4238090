package actions

import (
	"testing"
	"time"

	"leadscout/internal/model"
	"leadscout/internal/sink"
	"leadscout/internal/store/leaddb"
)

func seedLead(id string, worthy bool, draft string) *model.Lead {
	w := worthy
	score := 8
	return &model.Lead{
		PostID:        id,
		Subreddit:     "languagelearning",
		Author:        "author_" + id,
		Title:         "title " + id,
		PostURL:       "https://reddit.com/r/languagelearning/comments/" + id + "/t/",
		ScrapedAt:     time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		SignalScore:   &score,
		SignalTier:    model.TierHigh,
		Category:      model.CategoryPractice,
		CommentWorthy: &w,
		PublicDraft:   draft,
		Status:        "new",
	}
}

func newQueue(t *testing.T) (*Queue, *leaddb.Store, *sink.CSVSink) {
	t.Helper()
	s := sink.New(t.TempDir())
	db, err := leaddb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewQueue(s, db), db, s
}

func TestPendingFiltersWorthyDraftedUnsent(t *testing.T) {
	q, db, s := newQueue(t)
	leads := []*model.Lead{
		seedLead("p1", true, "draft one"),
		seedLead("p2", false, "draft two"), // not worthy
		seedLead("p3", true, ""),           // no draft
		seedLead("p4", true, "draft four"),
	}
	if _, _, err := s.AppendLeads(leads); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkSent("p4", "comment"); err != nil {
		t.Fatal(err)
	}
	pending, err := q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].PostID != "p1" {
		t.Fatalf("pending %+v", pending)
	}
}

func TestPendingKeepsRowsWithoutVerdict(t *testing.T) {
	q, _, s := newQueue(t)
	// Gate disabled: drafted lead persisted with no worthiness verdict.
	ungated := seedLead("p1", true, "draft one")
	ungated.CommentWorthy = nil
	if _, _, err := s.AppendLeads([]*model.Lead{ungated}); err != nil {
		t.Fatal(err)
	}
	pending, err := q.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].PostID != "p1" {
		t.Fatalf("verdict-less drafted lead must stay pending, got %+v", pending)
	}
}

func TestNextAndMarkSentDrainQueue(t *testing.T) {
	q, _, s := newQueue(t)
	if _, _, err := s.AppendLeads([]*model.Lead{
		seedLead("p1", true, "d1"),
		seedLead("p2", true, "d2"),
	}); err != nil {
		t.Fatal(err)
	}
	row, ok, err := q.Next()
	if err != nil || !ok || row.PostID != "p1" {
		t.Fatalf("next %+v ok=%v err=%v", row, ok, err)
	}
	if err := q.MarkSent(row.PostID, "comment"); err != nil {
		t.Fatal(err)
	}
	row, ok, err = q.Next()
	if err != nil || !ok || row.PostID != "p2" {
		t.Fatalf("next after mark %+v ok=%v err=%v", row, ok, err)
	}
	if err := q.MarkSent(row.PostID, "dm"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err = q.Next(); err != nil || ok {
		t.Fatalf("queue should be empty, ok=%v err=%v", ok, err)
	}
}

func TestMarkSentValidation(t *testing.T) {
	q, _, _ := newQueue(t)
	if err := q.MarkSent("", "comment"); err == nil {
		t.Fatal("empty id accepted")
	}
	if err := q.MarkSent("p1", "carrier_pigeon"); err == nil {
		t.Fatal("unknown channel accepted")
	}
}
