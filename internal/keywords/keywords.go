// Package keywords defines the lexical trigger and exclusion corpora.
//
// Trigger keywords mark posts from people who plausibly need conversation
// practice; exclusion keywords drop test-prep, academic, and passive-media
// posts. Both sets are matched as case-insensitive substrings.
package keywords

import "strings"

// languagePatterns are the languages the trigger generator expands over.
var languagePatterns = []string{
	"japanese", "spanish", "french", "german", "italian", "portuguese",
	"korean", "chinese", "mandarin", "hindi", "russian", "vietnamese",
	"dutch", "filipino", "tagalog", "indonesian", "turkish",
}

// staticTriggers are the hand-curated trigger keywords.
var staticTriggers = []string{
	// Speaking anxiety / emotional
	"afraid to speak",
	"scared to speak",
	"scared to talk",
	"nervous to speak",
	"anxiety when speaking",
	"speaking anxiety",
	"freeze up",
	"freeze up speaking",
	"freezing up",
	"blank out",
	"mind goes blank",
	"too shy",
	"embarrassed to speak",
	"frustrated",
	"overwhelmed",
	"losing motivation",
	"want to give up",
	"giving up",
	"stuck at",
	"hit a wall",
	"plateau",

	// Life events / deadlines
	"moving to",
	"relocating to",
	"going to move",
	"in-laws",
	"in laws",
	"partner's family",
	"partners family",
	"spouse's family",
	"boyfriend's family",
	"girlfriend's family",
	"meeting family",
	"job interview",
	"work trip",
	"business meeting",
	"business trip",
	"need to learn fast",
	"need to learn quickly",
	"deadline",
	"before i move",
	"before moving",

	// App/method frustration
	"duolingo isn't working",
	"duolingo doesn't work",
	"duolingo not helping",
	"quit duolingo",
	"beyond duolingo",
	"apps don't help",
	"apps aren't helping",
	"textbook isn't helping",
	"still can't speak",
	"can't speak",
	"can read but can't speak",
	"understand but can't speak",
	"years of studying",
	"studied for years",
	"been learning for",
	"learning for months",
	"learning for years",

	// Heritage speakers / family
	"heritage speaker",
	"lost my language",
	"can't speak to relatives",
	"in-laws don't speak",
	"bilingual couple",
	"language barrier relationship",
	"conversational fluency",

	// Specific needs
	"conversation practice",
	"speaking practice",
	"speaking partner",
	"conversation partner",
	"language partner",
	"native speaker",
	"real conversations",
	"actual conversations",
	"practical speaking",
	"everyday conversation",
	"daily conversation",
	"survival phrases",
	"need to speak",
	"want to speak",
	"improve my speaking",
	"practice speaking",

	// Intermediate+ learners (higher intent)
	"intermediate",
	"upper intermediate",
	"advanced but",
	"b1",
	"b2",
	"c1",
	"conversational level",
	"can hold a conversation",
}

// Excludes are the low-signal exclusion keywords.
var Excludes = []string{
	// Proficiency tests
	"jlpt", "n1", "n2", "n3", "n4", "n5",
	"hsk", "topik", "dele", "delf", "dalf",
	"goethe", "telc", "cils", "celi",
	"toefl", "ielts",
	"test prep", "exam prep", "passing the", "pass the exam",

	// Academic / homework
	"homework", "assignment", "class assignment", "school project",
	"university course", "college course", "quiz", "final exam",
	"midterm", "grade", "grading", "professor", "teacher said",

	// Translation requests
	"translate this", "what does this mean", "help me translate",
	"can someone translate", "translation help", "what does this say",
	"how do you say",

	// Passive media consumption
	"anime", "manga", "light novel", "visual novel", "drama",
	"kdrama", "cdrama", "jdrama", "subtitles", "watch without subs",
	"raw anime", "webtoon",

	// Off-topic
	"tattoo", "song lyrics", "lyrics translation", "game translation",
	"meme", "joke translation",

	// Resource requests (not conversation-focused)
	"best textbook", "textbook recommendation", "anki deck", "flashcard",
	"grammar guide", "what app", "which app", "youtube channel",
	"podcast recommendation",
}

// Triggers is the full trigger list: generated language patterns first,
// then the static corpus. Match order follows this list.
var Triggers = buildTriggers()

func buildTriggers() []string {
	patterns := []string{
		"speak %s",
		"learning %s",
		"best way to learn %s",
		"fluency in %s",
		"practice speaking %s",
		"become conversational in %s",
		"conversational %s",
	}
	out := make([]string, 0, len(patterns)*len(languagePatterns)+len(staticTriggers))
	for _, p := range patterns {
		for _, lang := range languagePatterns {
			out = append(out, strings.Replace(p, "%s", lang, 1))
		}
	}
	return append(out, staticTriggers...)
}

// MatchTriggers returns every trigger keyword present in text, in corpus order.
func MatchTriggers(text string) []string {
	return matchAll(text, Triggers)
}

// MatchExcludes returns every exclusion keyword present in text, in corpus order.
func MatchExcludes(text string) []string {
	return matchAll(text, Excludes)
}

func matchAll(text string, corpus []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range corpus {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
