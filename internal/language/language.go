// Package language holds the supported-language registry and the
// communities monitored for each.
package language

import (
	"sort"
	"strings"
)

// Language describes one supported target language.
type Language struct {
	Code       string
	Name       string
	NativeName string
	Subreddits []string
}

// GeneralSubreddits are monitored regardless of target language.
var GeneralSubreddits = []string{"languagelearning", "language_exchange", "polyglot"}

// Registry lists every supported language.
var Registry = []Language{
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Subreddits: []string{"LearnJapanese", "japanlife", "movingtojapan"}},
	{Code: "en", Name: "English", NativeName: "English", Subreddits: []string{"EnglishLearning", "ENGLISH"}},
	{Code: "es", Name: "Spanish", NativeName: "Español", Subreddits: []string{"Spanish", "learnspanish"}},
	{Code: "fr", Name: "French", NativeName: "Français", Subreddits: []string{"French", "learnfrench"}},
	{Code: "de", Name: "German", NativeName: "Deutsch", Subreddits: []string{"German", "germany"}},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Subreddits: []string{"italianlearning"}},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Subreddits: []string{"Portuguese"}},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Subreddits: []string{"Korean", "korea"}},
	{Code: "zh", Name: "Chinese", NativeName: "中文", Subreddits: []string{"ChineseLanguage"}},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Subreddits: []string{"Hindi"}},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Subreddits: []string{"russian"}},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt", Subreddits: []string{"learnvietnamese"}},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands", Subreddits: []string{"learndutch"}},
	{Code: "fil", Name: "Filipino", NativeName: "Tagalog", Subreddits: []string{"Tagalog"}},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia", Subreddits: []string{"indonesian"}},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe", Subreddits: []string{"turkishlearning"}},
}

// ByCode returns the language with the given code, or false.
func ByCode(code string) (Language, bool) {
	for _, l := range Registry {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// AllSubreddits returns the deduplicated, sorted union of every monitored
// community, general ones included.
func AllSubreddits() []string {
	seen := map[string]bool{}
	var out []string
	add := func(sub string) {
		key := strings.ToLower(sub)
		if !seen[key] {
			seen[key] = true
			out = append(out, sub)
		}
	}
	for _, sub := range GeneralSubreddits {
		add(sub)
	}
	for _, l := range Registry {
		for _, sub := range l.Subreddits {
			add(sub)
		}
	}
	sort.Strings(out)
	return out
}

// Detect returns the code of the first registered language whose English or
// native name appears in text, or "" when none does. Registry order decides
// ties.
func Detect(text string) string {
	lower := strings.ToLower(text)
	for _, l := range Registry {
		if strings.Contains(lower, strings.ToLower(l.Name)) {
			return l.Code
		}
		if l.NativeName != "" && l.NativeName != l.Name && strings.Contains(text, l.NativeName) {
			return l.Code
		}
	}
	return ""
}
