package feed

import (
	"context"
	"time"

	"leadscout/internal/model"
)

// MockFeed serves a fixed listing for dry runs and tests.
type MockFeed struct {
	Posts []model.Post
}

// NewMockFeed seeds a small, deterministic listing covering the common
// filter outcomes.
func NewMockFeed() *MockFeed {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	return &MockFeed{Posts: []model.Post{
		{
			ID:          "mock1",
			Subreddit:   "LearnJapanese",
			Author:      "worried_learner",
			Title:       "Afraid to speak Japanese with my in-laws",
			Body:        "I can read fine but I freeze up every time. Moving to Osaka in three months.",
			Permalink:   "/r/LearnJapanese/comments/mock1/afraid_to_speak/",
			CreatedUTC:  base,
			Score:       42,
			NumComments: 7,
		},
		{
			ID:          "mock2",
			Subreddit:   "languagelearning",
			Author:      "app_hopper",
			Title:       "Two years of Duolingo and I still can't speak",
			Body:        "Streak of 700 days but conversations terrify me. What am I doing wrong?",
			Permalink:   "/r/languagelearning/comments/mock2/still_cant_speak/",
			CreatedUTC:  base.Add(-time.Hour),
			Score:       128,
			NumComments: 31,
		},
		{
			ID:          "mock3",
			Subreddit:   "LearnJapanese",
			Author:      "test_grinder",
			Title:       "JLPT N2 grammar question",
			Body:        "Which anki deck is best for N2 prep?",
			Permalink:   "/r/LearnJapanese/comments/mock3/jlpt_n2/",
			CreatedUTC:  base.Add(-2 * time.Hour),
			Score:       5,
			NumComments: 2,
		},
		{
			ID:          "mock4",
			Subreddit:   "Spanish",
			Author:      "[deleted]",
			Title:       "Need conversation practice before my trip",
			Permalink:   "/r/Spanish/comments/mock4/conversation_practice/",
			CreatedUTC:  base.Add(-3 * time.Hour),
			Score:       3,
			NumComments: 0,
		},
		{
			ID:          "mock5",
			Subreddit:   "German",
			Author:      "berlin_bound",
			Title:       "Relocating to Berlin for work, my German is shaky",
			Body:        "Job interview next month is partly in German and I'm nervous to speak.",
			Permalink:   "/r/German/comments/mock5/relocating_to_berlin/",
			CreatedUTC:  base.Add(-4 * time.Hour),
			Score:       17,
			NumComments: 4,
		},
	}}
}

func (m *MockFeed) FetchNew(ctx context.Context, subreddits []string, limit int) ([]model.Post, error) {
	if limit > 0 && limit < len(m.Posts) {
		return m.Posts[:limit], nil
	}
	return m.Posts, nil
}
