// Package pipeline wires the stages of one scouting run:
// fetch, filter, score, generate, persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"leadscout/internal/feed"
	"leadscout/internal/filter"
	"leadscout/internal/llm"
	"leadscout/internal/logging"
	"leadscout/internal/metrics"
	"leadscout/internal/model"
	"leadscout/internal/responder"
	"leadscout/internal/scorer"
	"leadscout/internal/sink"
	"leadscout/internal/store/leaddb"
)

// Deps carries everything a run needs. Store may be nil; everything else
// is required.
type Deps struct {
	Feed  feed.Feed
	LLM   llm.Client
	Sink  *sink.CSVSink
	Store *leaddb.Store

	Subreddits []string
	FetchLimit int

	ScoringModel  string
	ResponseModel string
	Threshold     int
	BatchSize     int
	BatchPause    time.Duration
	RequireWorthy bool
}

// Run executes one full pass. Only a fetch failure aborts the run;
// inference failures degrade per lead, and persistence errors surface
// after the stats are complete.
func Run(ctx context.Context, d Deps) (model.RunStats, error) {
	start := time.Now()
	metrics.ScoutRuns.Inc()
	defer metrics.ObserveRunDuration(start)

	stats := model.RunStats{StartedAt: start.UTC()}

	posts, err := d.Feed.FetchNew(ctx, d.Subreddits, d.FetchLimit)
	if err != nil {
		metrics.ScoutErrors.Inc()
		return stats, fmt.Errorf("pipeline: fetch: %w", err)
	}
	stats.PostsFetched = len(posts)
	metrics.PostsFetched.Add(float64(len(posts)))

	f := filter.New()
	leads := f.FilterAll(posts)
	stats.Filter = f.Stats()
	stats.LeadsFound = len(leads)
	metrics.LeadsFound.Add(float64(len(leads)))

	qualified := leads
	if d.LLM != nil && d.LLM.Configured() && len(leads) > 0 {
		sc := scorer.New(d.LLM, d.ScoringModel).WithBatch(d.BatchSize, d.BatchPause)
		if err := sc.ScoreAll(ctx, leads); err != nil {
			metrics.ScoutErrors.Inc()
			return stats, fmt.Errorf("pipeline: score: %w", err)
		}
		qualified = scorer.FilterHighSignal(leads, d.Threshold)
		stats.HighSignal = len(qualified)

		r := responder.New(d.LLM, d.ScoringModel, d.ResponseModel, d.RequireWorthy)
		skipped, err := r.GenerateAll(ctx, qualified)
		if err != nil {
			metrics.ScoutErrors.Inc()
			return stats, fmt.Errorf("pipeline: generate: %w", err)
		}
		stats.WorthinessSkipped = skipped
	} else {
		// Without inference every filtered lead is persisted unscored.
		logging.Info("scoring_skipped", map[string]any{"reason": "llm not configured"})
	}

	saved, skippedDup, err := d.Sink.AppendLeads(qualified)
	if err != nil {
		metrics.ScoutErrors.Inc()
		return stats, fmt.Errorf("pipeline: persist: %w", err)
	}
	stats.Saved = saved
	stats.SkippedDuplicates = skippedDup
	metrics.LeadsPersisted.Add(float64(saved))
	metrics.DuplicatesSkipped.Add(float64(skippedDup))

	if d.Store != nil {
		if len(posts) > 0 {
			if err := d.Store.SaveCursor("feed_newest", posts[0].ID); err != nil {
				logging.Warn("cursor_save_failed", map[string]any{"error": err.Error()})
			}
		}
		if err := d.Store.PutRunStats(stats); err != nil {
			logging.Warn("run_history_failed", map[string]any{"error": err.Error()})
		}
	}

	logging.Info("run_complete", map[string]any{
		"fetched":        stats.PostsFetched,
		"leads":          stats.LeadsFound,
		"high_signal":    stats.HighSignal,
		"saved":          stats.Saved,
		"duplicates":     stats.SkippedDuplicates,
		"excluded":       stats.Filter.Excluded,
		"deleted_author": stats.Filter.DeletedAuthor,
		"duration_ms":    time.Since(start).Milliseconds(),
	})
	return stats, nil
}
