// Package filter implements the lexical pre-filter that turns raw posts
// into leads before any inference runs.
package filter

import (
	"iter"
	"time"

	"leadscout/internal/keywords"
	"leadscout/internal/language"
	"leadscout/internal/model"
	"leadscout/internal/util"
)

// KeywordFilter screens posts in a fixed order: deleted authors first, then
// exclusion keywords, then trigger keywords. Stats accumulate per instance,
// so each run gets a fresh filter. Not safe for concurrent use.
type KeywordFilter struct {
	stats model.FilterStats
	now   func() time.Time
}

func New() *KeywordFilter {
	return &KeywordFilter{now: time.Now}
}

// Check classifies a single post. It returns the lead when the post passes,
// or nil when it was dropped, and updates the running stats either way.
func (f *KeywordFilter) Check(p model.Post) *model.Lead {
	f.stats.Total++
	if p.Author == model.DeletedAuthor || p.Author == "" {
		f.stats.DeletedAuthor++
		return nil
	}
	// Collapse whitespace so multi-word keywords match across line breaks.
	text := util.NormalizeWhitespace(p.FullText())
	if excluded := keywords.MatchExcludes(text); len(excluded) > 0 {
		f.stats.Excluded++
		return nil
	}
	triggers := keywords.MatchTriggers(text)
	if len(triggers) == 0 {
		f.stats.NoTrigger++
		return nil
	}
	f.stats.Passed++
	return model.LeadFromPost(p, triggers, language.Detect(text), f.now())
}

// Stream lazily filters a post sequence into passing leads.
func (f *KeywordFilter) Stream(posts iter.Seq[model.Post]) iter.Seq[*model.Lead] {
	return func(yield func(*model.Lead) bool) {
		for p := range posts {
			if lead := f.Check(p); lead != nil {
				if !yield(lead) {
					return
				}
			}
		}
	}
}

// FilterAll is the eager convenience form of Stream.
func (f *KeywordFilter) FilterAll(posts []model.Post) []*model.Lead {
	var leads []*model.Lead
	for _, p := range posts {
		if lead := f.Check(p); lead != nil {
			leads = append(leads, lead)
		}
	}
	return leads
}

// Stats returns the counts accumulated so far.
func (f *KeywordFilter) Stats() model.FilterStats {
	return f.stats
}
