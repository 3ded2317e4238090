// Package scorer assigns a 1-10 signal score to filtered leads using the
// inference client, batching requests to stay inside free-tier quotas.
package scorer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadscout/internal/llm"
	"leadscout/internal/logging"
	"leadscout/internal/metrics"
	"leadscout/internal/model"
	"leadscout/internal/util"
)

const (
	DefaultBatchSize = 5
	DefaultPause     = 2 * time.Second

	singleBodyLimit = 1000
	batchBodyLimit  = 400
	batchTriggerCap = 5
)

// Scorer scores leads in place. Failed calls are never retried; the lead
// keeps a nil score with MEDIUM tier and the default category so the
// threshold gate drops it later.
type Scorer struct {
	client    llm.Client
	model     string
	batchSize int
	pause     time.Duration
}

func New(client llm.Client, model string) *Scorer {
	return &Scorer{
		client:    client,
		model:     model,
		batchSize: DefaultBatchSize,
		pause:     DefaultPause,
	}
}

// WithBatch overrides batch size and inter-batch pause. size < 1 disables
// batching entirely.
func (s *Scorer) WithBatch(size int, pause time.Duration) *Scorer {
	s.batchSize = size
	s.pause = pause
	return s
}

type scoreResult struct {
	ID         string `json:"id,omitempty"`
	Score      int    `json:"score"`
	SignalType string `json:"signal_type"`
	Category   string `json:"category"`
	Reasoning  string `json:"reasoning"`
}

// apply writes a model verdict onto the lead, clamping out-of-range values.
func apply(lead *model.Lead, r scoreResult) {
	score := r.Score
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	lead.SignalScore = &score
	if model.ValidTier(r.SignalType) {
		lead.SignalTier = model.SignalTier(r.SignalType)
	} else {
		lead.SignalTier = model.TierForScore(score)
	}
	if model.ValidCategory(r.Category) {
		lead.Category = r.Category
	} else {
		lead.Category = model.DefaultCategory
	}
}

// applyDefault marks a lead whose scoring failed. The score stays nil so
// the threshold gate excludes it.
func applyDefault(lead *model.Lead) {
	lead.SignalScore = nil
	lead.SignalTier = model.TierMedium
	lead.Category = model.DefaultCategory
}

// ScoreAll scores every lead, in batches when batchSize > 1. Only context
// cancellation aborts the pass; per-call failures degrade to defaults.
func (s *Scorer) ScoreAll(ctx context.Context, leads []*model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	if !s.client.Configured() {
		return llm.ErrNotConfigured
	}
	size := s.batchSize
	if size < 1 {
		size = 1
	}
	for start := 0; start < len(leads); start += size {
		if start > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.pause):
			}
		}
		end := min(start+size, len(leads))
		group := leads[start:end]
		if len(group) == 1 {
			s.scoreOne(ctx, group[0])
			continue
		}
		if err := s.scoreGroup(ctx, group); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("score_batch_fallback", map[string]any{"size": len(group), "error": err.Error()})
			for _, lead := range group {
				s.scoreOne(ctx, lead)
			}
		}
	}
	return ctx.Err()
}

// scoreGroup scores one batch with a single call. Any failure, including a
// response missing ids, is returned so the caller can fall back to singles.
func (s *Scorer) scoreGroup(ctx context.Context, group []*model.Lead) error {
	metrics.IncInferenceCall("score_batch")
	text, err := s.client.Generate(ctx, llm.Request{
		Model:       s.model,
		Prompt:      batchPrompt(group),
		MaxTokens:   220 * len(group),
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		metrics.IncInferenceError("score_batch")
		return err
	}
	var results []scoreResult
	if err := llm.ExtractJSON(text, &results); err != nil {
		metrics.IncInferenceError("score_batch")
		return fmt.Errorf("batch response: %w", err)
	}
	byID := make(map[string]scoreResult, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}
	for _, lead := range group {
		r, ok := byID[lead.PostID]
		if !ok {
			return fmt.Errorf("batch response missing id %s", lead.PostID)
		}
		apply(lead, r)
	}
	return nil
}

func (s *Scorer) scoreOne(ctx context.Context, lead *model.Lead) {
	metrics.IncInferenceCall("score")
	text, err := s.client.Generate(ctx, llm.Request{
		Model:       s.model,
		Prompt:      singlePrompt(lead),
		MaxTokens:   300,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		metrics.IncInferenceError("score")
		logging.Warn("score_failed", map[string]any{"post_id": lead.PostID, "error": err.Error()})
		applyDefault(lead)
		return
	}
	var r scoreResult
	if err := llm.ExtractJSON(text, &r); err != nil {
		metrics.IncInferenceError("score")
		logging.Warn("score_unparseable", map[string]any{"post_id": lead.PostID})
		applyDefault(lead)
		return
	}
	apply(lead, r)
}

// FilterHighSignal returns the leads at or above threshold, order preserved.
// Unscored leads never pass.
func FilterHighSignal(leads []*model.Lead, threshold int) []*model.Lead {
	var out []*model.Lead
	for _, lead := range leads {
		if lead.SignalScore != nil && *lead.SignalScore >= threshold {
			out = append(out, lead)
		}
	}
	return out
}

func singlePrompt(lead *model.Lead) string {
	return fmt.Sprintf(`You qualify leads for a conversation-practice language app. Rate how likely this poster is to want realistic speaking practice.

Subreddit: r/%s
Title: %s
Body: %s
Matched keywords: %s

Score 1-10 where 8-10 means clear intent to practice speaking, 5-7 means plausible interest, 1-4 means unlikely. Respond with JSON only:
{"score": <1-10>, "signal_type": "<HIGH|MEDIUM|LOW>", "category": "<%s>", "reasoning": "<one sentence>"}`,
		lead.Subreddit,
		lead.Title,
		util.Truncate(lead.Body, singleBodyLimit),
		strings.Join(lead.MatchedTriggers, ", "),
		strings.Join(model.Categories(), "|"))
}

func batchPrompt(group []*model.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You qualify leads for a conversation-practice language app. Rate each post below for how likely the poster is to want realistic speaking practice.

Score 1-10 where 8-10 means clear intent to practice speaking, 5-7 means plausible interest, 1-4 means unlikely. Respond with a JSON array only, one object per post, echoing each post's id:
[{"id": "<id>", "score": <1-10>, "signal_type": "<HIGH|MEDIUM|LOW>", "category": "<%s>", "reasoning": "<one sentence>"}]

Posts:
`, strings.Join(model.Categories(), "|"))
	for _, lead := range group {
		fmt.Fprintf(&b, "\nid: %s\nsubreddit: r/%s\ntitle: %s\nbody: %s\nkeywords: %s\n",
			lead.PostID,
			lead.Subreddit,
			lead.Title,
			util.Truncate(lead.Body, batchBodyLimit),
			strings.Join(util.TruncateList(lead.MatchedTriggers, batchTriggerCap), ", "))
	}
	return b.String()
}
