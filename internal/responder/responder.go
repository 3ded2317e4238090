// Package responder decides whether a high-signal lead deserves outreach
// and drafts the public reply and DM for the ones that do.
package responder

import (
	"context"
	"fmt"
	"strings"

	"leadscout/internal/llm"
	"leadscout/internal/logging"
	"leadscout/internal/metrics"
	"leadscout/internal/model"
	"leadscout/internal/util"
)

// Responder generates outreach content. Worthiness runs on the cheap
// scoring model; drafts run on the higher-quality response model.
type Responder struct {
	client        llm.Client
	scoringModel  string
	responseModel string
	requireWorthy bool
}

func New(client llm.Client, scoringModel, responseModel string, requireWorthy bool) *Responder {
	return &Responder{
		client:        client,
		scoringModel:  scoringModel,
		responseModel: responseModel,
		requireWorthy: requireWorthy,
	}
}

type worthyResult struct {
	Worthy bool   `json:"worthy"`
	Reason string `json:"reason"`
}

// checkWorthy asks whether the lead merits a public comment. Every failure
// mode answers yes: a dropped lead is worth more than a saved API call.
func (r *Responder) checkWorthy(ctx context.Context, lead *model.Lead) worthyResult {
	metrics.IncInferenceCall("worthy")
	text, err := r.client.Generate(ctx, llm.Request{
		Model:       r.scoringModel,
		Prompt:      worthyPrompt(lead),
		MaxTokens:   200,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		metrics.IncInferenceError("worthy")
		return worthyResult{Worthy: true, Reason: "worthiness check failed, defaulting to worthy"}
	}
	var res worthyResult
	if err := llm.ExtractJSON(text, &res); err != nil {
		metrics.IncInferenceError("worthy")
		return worthyResult{Worthy: true, Reason: "worthiness response unparseable, defaulting to worthy"}
	}
	if res.Reason == "" {
		res.Reason = "no reason given"
	}
	return res
}

func (r *Responder) draft(ctx context.Context, purpose, prompt string, maxTokens int) string {
	metrics.IncInferenceCall(purpose)
	text, err := r.client.Generate(ctx, llm.Request{
		Model:       r.responseModel,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		metrics.IncInferenceError(purpose)
		logging.Warn("draft_failed", map[string]any{"purpose": purpose, "error": err.Error()})
		return ""
	}
	return text
}

// Generate fills in worthiness and drafts for one lead. With the
// worthiness gate disabled the check is never called and CommentWorthy
// stays nil; every lead gets drafts.
func (r *Responder) Generate(ctx context.Context, lead *model.Lead) {
	if r.requireWorthy {
		res := r.checkWorthy(ctx, lead)
		lead.CommentWorthy = &res.Worthy
		lead.WorthyReason = res.Reason
		if !res.Worthy {
			return
		}
	}
	lead.PublicDraft = r.draft(ctx, "draft_public", publicPrompt(lead), 300)
	lead.DMDraft = r.draft(ctx, "draft_dm", dmPrompt(lead), 200)
}

// GenerateAll processes leads sequentially and reports how many were
// skipped as not worthy. Cancellation stops between leads.
func (r *Responder) GenerateAll(ctx context.Context, leads []*model.Lead) (skipped int, err error) {
	for _, lead := range leads {
		if ctx.Err() != nil {
			return skipped, ctx.Err()
		}
		r.Generate(ctx, lead)
		if lead.CommentWorthy != nil && !*lead.CommentWorthy {
			skipped++
		}
	}
	return skipped, nil
}

func worthyPrompt(lead *model.Lead) string {
	return fmt.Sprintf(`You review leads for a conversation-practice language app. Decide whether replying publicly to this post would be welcome and useful, or whether it would read as spam.

Subreddit: r/%s
Title: %s
Body: %s
Signal category: %s

Respond with JSON only: {"worthy": <true|false>, "reason": "<one sentence>"}`,
		lead.Subreddit, lead.Title, util.Truncate(lead.Body, 1000), lead.Category)
}

func publicPrompt(lead *model.Lead) string {
	return fmt.Sprintf(`Write a short, genuinely helpful Reddit comment replying to this post. Empathize with the specific struggle, offer one practical tip, and mention casually that practicing realistic conversations (apps like Kaiwa can simulate them) helped people in the same spot. No hashtags, no salesy tone, no links.

Subreddit: r/%s
Title: %s
Body: %s
Matched keywords: %s

Comment:`,
		lead.Subreddit, lead.Title, util.Truncate(lead.Body, 1000),
		strings.Join(lead.MatchedTriggers, ", "))
}

func dmPrompt(lead *model.Lead) string {
	return fmt.Sprintf(`Write a brief, friendly Reddit DM to the author of this post. Reference their situation in one sentence, then offer to share what worked for practicing speaking. Conversational, not promotional.

Title: %s
Body: %s

DM:`,
		lead.Title, util.Truncate(lead.Body, 600))
}
