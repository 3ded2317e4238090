package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON can be recovered from a
// model response.
var ErrNoJSON = errors.New("llm: no JSON found in response")

// ExtractJSON unmarshals the first JSON value recoverable from a model
// response into v. It tries, in order: the whole text, the contents of a
// fenced code block, and the first balanced {...} or [...] span.
func ExtractJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoJSON
	}
	if json.Unmarshal([]byte(text), v) == nil {
		return nil
	}
	if fenced, ok := fencedBlock(text); ok {
		if json.Unmarshal([]byte(fenced), v) == nil {
			return nil
		}
	}
	if span, ok := balancedSpan(text); ok {
		if json.Unmarshal([]byte(span), v) == nil {
			return nil
		}
	}
	return ErrNoJSON
}

// fencedBlock returns the contents of the first ``` fence, tolerating a
// language tag after the opening backticks.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop a possible language tag line such as "json".
		first := strings.TrimSpace(rest[:nl])
		if first == "" || len(first) <= 10 && !strings.ContainsAny(first, "{[") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// balancedSpan returns the first balanced JSON object or array in text.
// Brace counting skips string contents and escapes.
func balancedSpan(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	open := text[start]
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
