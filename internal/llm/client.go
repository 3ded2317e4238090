// Package llm provides the inference client used for scoring and drafting.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned when no API key is set. Callers treat it as
// "skip inference", not as a failure.
var ErrNotConfigured = errors.New("llm: not configured")

// Request is a single generation request. Calls are never retried here;
// callers decide how to degrade on failure.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// JSONMode asks for a JSON response. Only models that support a
	// response MIME type honor it; others get plain text the caller
	// must extract JSON from.
	JSONMode bool
}

// Client generates text for a request.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Configured() bool
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the Gemini generateContent endpoint.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewGemini builds a client. An empty apiKey yields a client whose calls
// fail fast with ErrNotConfigured.
func NewGemini(apiKey string) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (c *GeminiClient) WithBaseURL(u string) *GeminiClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *GeminiClient) Configured() bool { return c.apiKey != "" }

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// supportsJSONMode reports whether the model honors responseMimeType.
// Gemma-family models reject it and must return raw text instead.
func supportsJSONMode(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// Generate performs one generateContent call. No retries: a failed call
// surfaces immediately so the caller can apply its own fallback.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	cfg := &generationConfig{Temperature: req.Temperature, MaxOutputTokens: req.MaxTokens}
	if req.JSONMode && supportsJSONMode(req.Model) {
		cfg.ResponseMimeType = "application/json"
	}
	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, req.Model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: generate %s: status %d: %s", req.Model, resp.StatusCode, truncateBody(data))
	}

	var out geminiResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("llm: generate %s: api error %d: %s", req.Model, out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("llm: generate %s: empty response", req.Model)
	}
	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return strings.TrimSpace(text.String()), nil
}

func truncateBody(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
