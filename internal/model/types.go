package model

import (
	"strings"
	"time"
)

// Post is a raw submission as returned by the feed. Read-only after creation.
type Post struct {
	ID          string
	Subreddit   string
	Author      string
	Title       string
	Body        string
	URL         string
	Permalink   string
	CreatedUTC  time.Time
	Score       int
	NumComments int
}

// DeletedAuthor is the sentinel the feed uses for removed accounts.
const DeletedAuthor = "[deleted]"

// FullText returns the combined title and body used for keyword matching.
func (p Post) FullText() string {
	return p.Title + " " + p.Body
}

// PostURL returns the canonical link to the post.
func (p Post) PostURL() string {
	if strings.HasPrefix(p.Permalink, "http") {
		return p.Permalink
	}
	return "https://reddit.com" + p.Permalink
}

// MessageURL returns the compose link for contacting the author.
func (p Post) MessageURL() string {
	return "https://reddit.com/message/compose/?to=" + p.Author
}

// SignalTier buckets the 1-10 signal score.
type SignalTier string

const (
	TierHigh   SignalTier = "HIGH"
	TierMedium SignalTier = "MEDIUM"
	TierLow    SignalTier = "LOW"
)

// TierForScore maps a score onto its tier bucket.
func TierForScore(score int) SignalTier {
	switch {
	case score >= 8:
		return TierHigh
	case score >= 5:
		return TierMedium
	default:
		return TierLow
	}
}

// ValidTier reports whether s is one of the known tiers.
func ValidTier(s string) bool {
	switch SignalTier(s) {
	case TierHigh, TierMedium, TierLow:
		return true
	}
	return false
}

// Lead categories form a closed set; DefaultCategory is assigned when
// scoring fails or the model returns something outside the set.
const (
	CategoryAnxiety   = "Speaking Anxiety"
	CategoryPractice  = "Practice Gap"
	CategoryImmersion = "Immersion Prep"
	CategoryPlateau   = "Plateau Frustration"
	CategoryFatigue   = "App Fatigue"
	CategoryGeneral   = "General Learning"
)

// DefaultCategory is the neutral fallback category.
const DefaultCategory = CategoryGeneral

// Categories lists the closed category set.
func Categories() []string {
	return []string{
		CategoryAnxiety, CategoryPractice, CategoryImmersion,
		CategoryPlateau, CategoryFatigue, CategoryGeneral,
	}
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Lead is a post that passed the keyword filter, progressively enriched by
// the scoring and response-generation stages.
type Lead struct {
	PostID     string
	Subreddit  string
	Author     string
	Title      string
	Body       string
	PostURL    string
	MessageURL string
	CreatedAt  time.Time
	ScrapedAt  time.Time

	// Filter results.
	MatchedTriggers []string
	Language        string // language code, empty when undetected

	// Engagement metadata from the feed.
	Score       int
	NumComments int

	// Scoring stage. SignalScore stays nil when scoring failed or was skipped.
	SignalScore *int
	SignalTier  SignalTier
	Category    string

	// Response-generation stage.
	CommentWorthy *bool
	WorthyReason  string
	PublicDraft   string
	DMDraft       string

	Status string // new, contacted, replied, converted, ignored
}

// LeadFromPost derives a Lead from a passing post and its filter result.
func LeadFromPost(p Post, triggers []string, language string, now time.Time) *Lead {
	return &Lead{
		PostID:          p.ID,
		Subreddit:       p.Subreddit,
		Author:          p.Author,
		Title:           p.Title,
		Body:            p.Body,
		PostURL:         p.PostURL(),
		MessageURL:      p.MessageURL(),
		CreatedAt:       p.CreatedUTC,
		ScrapedAt:       now,
		MatchedTriggers: triggers,
		Language:        language,
		Score:           p.Score,
		NumComments:     p.NumComments,
		Status:          "new",
	}
}

// FilterStats counts per-reason filter outcomes for one run.
type FilterStats struct {
	Total         int
	Passed        int
	NoTrigger     int
	Excluded      int
	DeletedAuthor int
}

// RunStats aggregates one pipeline invocation.
type RunStats struct {
	StartedAt         time.Time
	PostsFetched      int
	LeadsFound        int
	HighSignal        int
	Saved             int
	SkippedDuplicates int
	WorthinessSkipped int
	Filter            FilterStats
}
