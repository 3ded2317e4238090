// Package leaddb is the local SQLite store for operational state the CSV
// sink doesn't carry: fetch cursors, outreach tracking, and run history.
package leaddb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"leadscout/internal/model"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("leaddb: pragma: %w", err)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cursors (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sent_log (
			post_id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			sent_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			posts_fetched INTEGER NOT NULL,
			leads_found INTEGER NOT NULL,
			high_signal INTEGER NOT NULL,
			saved INTEGER NOT NULL,
			skipped_duplicates INTEGER NOT NULL,
			excluded INTEGER NOT NULL,
			deleted_author INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("leaddb: migrate: %w", err)
		}
	}
	return nil
}

// SaveCursor stores a named cursor value, e.g. the newest fullname seen.
func (s *Store) SaveCursor(name, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO cursors (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		name, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadCursor returns the stored cursor value, or "" when unset.
func (s *Store) LoadCursor(name string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM cursors WHERE name = ?`, name).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// MarkSent records that outreach for a post went out on a channel
// (comment or dm). Re-marking the same post is a no-op.
func (s *Store) MarkSent(postID, channel string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sent_log (post_id, channel, sent_at) VALUES (?, ?, ?)`,
		postID, channel, time.Now().UTC().Format(time.RFC3339))
	return err
}

// SentIDs returns the set of posts already contacted.
func (s *Store) SentIDs() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT post_id FROM sent_log`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// PutRunStats appends one run to the history.
func (s *Store) PutRunStats(st model.RunStats) error {
	_, err := s.db.Exec(
		`INSERT INTO run_history
		 (started_at, posts_fetched, leads_found, high_signal, saved, skipped_duplicates, excluded, deleted_author)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.StartedAt.UTC().Format(time.RFC3339),
		st.PostsFetched, st.LeadsFound, st.HighSignal, st.Saved,
		st.SkippedDuplicates, st.Filter.Excluded, st.Filter.DeletedAuthor)
	return err
}

// RecentRuns returns up to n runs, newest first.
func (s *Store) RecentRuns(n int) ([]model.RunStats, error) {
	rows, err := s.db.Query(
		`SELECT started_at, posts_fetched, leads_found, high_signal, saved, skipped_duplicates, excluded, deleted_author
		 FROM run_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RunStats
	for rows.Next() {
		var st model.RunStats
		var started string
		if err := rows.Scan(&started, &st.PostsFetched, &st.LeadsFound, &st.HighSignal,
			&st.Saved, &st.SkippedDuplicates, &st.Filter.Excluded, &st.Filter.DeletedAuthor); err != nil {
			return nil, err
		}
		st.StartedAt, _ = time.Parse(time.RFC3339, started)
		out = append(out, st)
	}
	return out, rows.Err()
}
