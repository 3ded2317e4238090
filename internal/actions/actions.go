// Package actions manages the manual outreach queue built from persisted
// leads. Nothing here posts to Reddit; it surfaces drafts for a human.
package actions

import (
	"fmt"

	"leadscout/internal/sink"
	"leadscout/internal/store/leaddb"
)

type Queue struct {
	sink  *sink.CSVSink
	store *leaddb.Store
}

func NewQueue(s *sink.CSVSink, db *leaddb.Store) *Queue {
	return &Queue{sink: s, store: db}
}

// Pending returns leads that merit outreach and haven't been contacted:
// drafted, not explicitly judged unworthy, and absent from the sent log.
// Rows without a recorded verdict (gate disabled) stay eligible.
// Oldest first, so the queue drains in scrape order.
func (q *Queue) Pending() ([]sink.Row, error) {
	rows, err := q.sink.ReadAll()
	if err != nil {
		return nil, err
	}
	sent, err := q.store.SentIDs()
	if err != nil {
		return nil, err
	}
	var out []sink.Row
	for _, r := range rows {
		if r.WorthyRecorded && !r.CommentWorthy {
			continue
		}
		if r.PublicDraft == "" {
			continue
		}
		if r.PostID == "" || sent[r.PostID] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Next returns the oldest pending lead, or false when the queue is empty.
func (q *Queue) Next() (sink.Row, bool, error) {
	pending, err := q.Pending()
	if err != nil || len(pending) == 0 {
		return sink.Row{}, false, err
	}
	return pending[0], true, nil
}

// MarkSent records that outreach went out for a post.
func (q *Queue) MarkSent(postID, channel string) error {
	if postID == "" {
		return fmt.Errorf("actions: empty post id")
	}
	switch channel {
	case "comment", "dm":
	default:
		return fmt.Errorf("actions: unknown channel %q", channel)
	}
	return q.store.MarkSent(postID, channel)
}
