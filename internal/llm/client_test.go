package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateNotConfigured(t *testing.T) {
	c := NewGemini("")
	if c.Configured() {
		t.Fatal("empty key reported configured")
	}
	_, err := c.Generate(context.Background(), Request{Model: "gemini-2.0-flash", Prompt: "hi"})
	if err != ErrNotConfigured {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}

func newFakeServer(t *testing.T, capture *geminiRequest, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		body, _ := io.ReadAll(r.Body)
		if capture != nil {
			if err := json.Unmarshal(body, capture); err != nil {
				t.Errorf("bad request body: %v", err)
			}
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": reply}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateRoundTrip(t *testing.T) {
	var captured geminiRequest
	srv := newFakeServer(t, &captured, `{"score": 8}`)
	defer srv.Close()

	c := NewGemini("test-key").WithBaseURL(srv.URL)
	got, err := c.Generate(context.Background(), Request{
		Model:       "gemini-2.0-flash",
		Prompt:      "score this",
		MaxTokens:   100,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"score": 8}` {
		t.Fatalf("got %q", got)
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("gemini model should request JSON mime type, got %+v", captured.GenerationConfig)
	}
	if captured.GenerationConfig.MaxOutputTokens != 100 {
		t.Fatalf("max tokens %d", captured.GenerationConfig.MaxOutputTokens)
	}
}

func TestGenerateJSONModeSkippedForGemma(t *testing.T) {
	var captured geminiRequest
	srv := newFakeServer(t, &captured, `{"score": 5}`)
	defer srv.Close()

	c := NewGemini("test-key").WithBaseURL(srv.URL)
	if _, err := c.Generate(context.Background(), Request{
		Model:    "gemma-3-27b-it",
		Prompt:   "score this",
		JSONMode: true,
	}); err != nil {
		t.Fatal(err)
	}
	if captured.GenerationConfig.ResponseMimeType != "" {
		t.Fatalf("gemma model must not request a response mime type, got %q", captured.GenerationConfig.ResponseMimeType)
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGemini("test-key").WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), Request{Model: "gemini-2.0-flash", Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("got %v", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	c := NewGemini("test-key").WithBaseURL(srv.URL)
	_, err := c.Generate(context.Background(), Request{Model: "gemini-2.0-flash", Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Fatalf("got %v", err)
	}
}
