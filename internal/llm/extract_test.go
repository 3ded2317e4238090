package llm

import "testing"

type scorePayload struct {
	Score      int    `json:"score"`
	SignalType string `json:"signal_type"`
}

func TestExtractJSONDirect(t *testing.T) {
	var p scorePayload
	if err := ExtractJSON(`{"score": 8, "signal_type": "HIGH"}`, &p); err != nil {
		t.Fatal(err)
	}
	if p.Score != 8 || p.SignalType != "HIGH" {
		t.Fatalf("got %+v", p)
	}
}

func TestExtractJSONFenced(t *testing.T) {
	text := "Here is the result:\n```json\n{\"score\": 6, \"signal_type\": \"MEDIUM\"}\n```\nHope that helps."
	var p scorePayload
	if err := ExtractJSON(text, &p); err != nil {
		t.Fatal(err)
	}
	if p.Score != 6 {
		t.Fatalf("got %+v", p)
	}
}

func TestExtractJSONBalancedSpan(t *testing.T) {
	text := `The post scores {"score": 4, "signal_type": "LOW"} overall, since...`
	var p scorePayload
	if err := ExtractJSON(text, &p); err != nil {
		t.Fatal(err)
	}
	if p.Score != 4 || p.SignalType != "LOW" {
		t.Fatalf("got %+v", p)
	}
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	text := `prefix {"score": 7, "signal_type": "a } b"} suffix`
	var p scorePayload
	if err := ExtractJSON(text, &p); err != nil {
		t.Fatal(err)
	}
	if p.SignalType != "a } b" {
		t.Fatalf("got %+v", p)
	}
}

func TestExtractJSONArray(t *testing.T) {
	text := "```\n[{\"score\": 1, \"signal_type\": \"LOW\"}, {\"score\": 9, \"signal_type\": \"HIGH\"}]\n```"
	var ps []scorePayload
	if err := ExtractJSON(text, &ps); err != nil {
		t.Fatal(err)
	}
	if len(ps) != 2 || ps[1].Score != 9 {
		t.Fatalf("got %+v", ps)
	}
}

func TestExtractJSONNone(t *testing.T) {
	var p scorePayload
	if err := ExtractJSON("sorry, I cannot score that post", &p); err != ErrNoJSON {
		t.Fatalf("got %v, want ErrNoJSON", err)
	}
	if err := ExtractJSON("", &p); err != ErrNoJSON {
		t.Fatalf("got %v, want ErrNoJSON", err)
	}
}
