// Package sink persists qualified leads to an append-only CSV file and
// answers which posts are already recorded.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"leadscout/internal/logging"
	"leadscout/internal/model"
)

// Header is the versioned column order. New columns append at the end;
// existing files with the old header keep working for reads.
var Header = []string{
	"scraped_at", "created_at", "subreddit", "author", "title",
	"post_url", "message_url", "matched_triggers", "language", "score",
	"comments", "status", "signal_score", "signal_type", "category",
	"comment_worthy", "comment_worthy_reason", "public_draft", "dm_draft",
}

const timeLayout = "2006-01-02 15:04:05"

// CSVSink appends leads to a single CSV file, creating it with a header
// on first write. Post identity comes from the post URL, so the file acts
// as the dedup record across runs.
type CSVSink struct {
	path string
}

func New(dataDir string) *CSVSink {
	return &CSVSink{path: filepath.Join(dataDir, "leads.csv")}
}

// Path returns the backing file path.
func (s *CSVSink) Path() string { return s.path }

// PostIDFromURL extracts the post id between "/comments/" and the next
// slash. Returns "" when the URL has no comments segment.
func PostIDFromURL(u string) string {
	const marker = "/comments/"
	i := strings.Index(u, marker)
	if i < 0 {
		return ""
	}
	rest := u[i+len(marker):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rest[:j]
	}
	return rest
}

// ExistingPostIDs re-reads the file and returns the set of recorded post
// ids. A missing file means an empty set.
func (s *CSVSink) ExistingPostIDs() (map[string]bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sink: read %s: %w", s.path, err)
	}
	urlCol := 5
	ids := map[string]bool{}
	for i, row := range rows {
		if i == 0 || len(row) <= urlCol {
			continue
		}
		if id := PostIDFromURL(row[urlCol]); id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}

// AppendLeads writes leads not already recorded, skipping duplicates both
// against the file and within the batch. Returns saved and skipped counts.
func (s *CSVSink) AppendLeads(leads []*model.Lead) (saved, skipped int, err error) {
	if len(leads) == 0 {
		return 0, 0, nil
	}
	existing, err := s.ExistingPostIDs()
	if err != nil {
		return 0, 0, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, 0, err
	}
	fresh := false
	if _, statErr := os.Stat(s.path); os.IsNotExist(statErr) {
		fresh = true
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(Header); err != nil {
			return 0, 0, err
		}
	}
	for _, lead := range leads {
		id := lead.PostID
		if id == "" {
			id = PostIDFromURL(lead.PostURL)
		}
		if existing[id] {
			skipped++
			continue
		}
		existing[id] = true
		if err := w.Write(record(lead)); err != nil {
			return saved, skipped, err
		}
		saved++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return saved, skipped, err
	}
	logging.Info("sink_appended", map[string]any{"saved": saved, "skipped": skipped, "path": s.path})
	return saved, skipped, nil
}

func record(l *model.Lead) []string {
	score := ""
	if l.SignalScore != nil {
		score = strconv.Itoa(*l.SignalScore)
	}
	worthy := ""
	if l.CommentWorthy != nil {
		worthy = strconv.FormatBool(*l.CommentWorthy)
	}
	return []string{
		l.ScrapedAt.UTC().Format(timeLayout),
		l.CreatedAt.UTC().Format(timeLayout),
		l.Subreddit,
		l.Author,
		l.Title,
		l.PostURL,
		l.MessageURL,
		strings.Join(l.MatchedTriggers, "; "),
		l.Language,
		strconv.Itoa(l.Score),
		strconv.Itoa(l.NumComments),
		l.Status,
		score,
		string(l.SignalTier),
		l.Category,
		worthy,
		l.WorthyReason,
		l.PublicDraft,
		l.DMDraft,
	}
}

// Row is a persisted lead read back from the file. WorthyRecorded is
// false when the row predates the worthiness gate or the gate was off.
type Row struct {
	PostID         string
	Subreddit      string
	Author         string
	Title          string
	PostURL        string
	MessageURL     string
	Language       string
	Status         string
	SignalScore    string
	SignalTier     string
	Category       string
	CommentWorthy  bool
	WorthyRecorded bool
	WorthyReason   string
	PublicDraft    string
	DMDraft        string
	ScrapedAt      time.Time
}

// ReadAll returns every persisted lead, oldest first.
func (s *CSVSink) ReadAll() ([]Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sink: read %s: %w", s.path, err)
	}
	var rows []Row
	for i, rec := range records {
		if i == 0 || len(rec) <= 5 {
			continue
		}
		// Rows written under an older, shorter header simply lack the
		// trailing columns; missing fields read as empty.
		col := func(j int) string {
			if j < len(rec) {
				return rec[j]
			}
			return ""
		}
		scraped, _ := time.Parse(timeLayout, col(0))
		rows = append(rows, Row{
			ScrapedAt:      scraped,
			Subreddit:      col(2),
			Author:         col(3),
			Title:          col(4),
			PostURL:        col(5),
			MessageURL:     col(6),
			Language:       col(8),
			Status:         col(11),
			SignalScore:    col(12),
			SignalTier:     col(13),
			Category:       col(14),
			CommentWorthy:  col(15) == "true",
			WorthyRecorded: col(15) != "",
			WorthyReason:   col(16),
			PublicDraft:    col(17),
			DMDraft:        col(18),
			PostID:         PostIDFromURL(col(5)),
		})
	}
	return rows, nil
}
