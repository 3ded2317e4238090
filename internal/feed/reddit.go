package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leadscout/internal/logging"
	"leadscout/internal/model"
)

// Credentials for the script-app OAuth flow. All four must be set; an
// empty set means anonymous access via the public JSON endpoints.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

func (c Credentials) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

// RedditClient fetches listings from Reddit, authenticated when
// credentials are available and anonymous otherwise.
type RedditClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	creds      Credentials
	userAgent  string

	authBase   string
	publicBase string
	tokenURL   string

	token       string
	tokenExpiry time.Time
}

func NewRedditClient(creds Credentials, userAgent string) *RedditClient {
	if userAgent == "" {
		userAgent = "leadscout/0.1"
	}
	return &RedditClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		creds:      creds,
		userAgent:  userAgent,
		authBase:   "https://oauth.reddit.com",
		publicBase: "https://www.reddit.com",
		tokenURL:   "https://www.reddit.com/api/v1/access_token",
	}
}

// WithBaseURLs overrides the endpoints, for tests.
func (c *RedditClient) WithBaseURLs(authBase, publicBase, tokenURL string) *RedditClient {
	c.authBase = strings.TrimRight(authBase, "/")
	c.publicBase = strings.TrimRight(publicBase, "/")
	c.tokenURL = tokenURL
	return c
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Subreddit   string  `json:"subreddit"`
				Author      string  `json:"author"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				URL         string  `json:"url"`
				Permalink   string  `json:"permalink"`
				CreatedUTC  float64 `json:"created_utc"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchNew pulls the newest posts from the joined multireddit listing.
func (c *RedditClient) FetchNew(ctx context.Context, subreddits []string, limit int) ([]model.Post, error) {
	if len(subreddits) == 0 {
		return nil, fmt.Errorf("feed: no subreddits configured")
	}
	if limit <= 0 {
		limit = 100
	}
	base := c.publicBase
	if c.creds.complete() {
		if err := c.ensureToken(ctx); err != nil {
			return nil, err
		}
		base = c.authBase
	}
	u := fmt.Sprintf("%s/r/%s/new.json?limit=%d&raw_json=1", base, strings.Join(subreddits, "+"), limit)

	var lst listing
	if err := c.getJSON(ctx, u, &lst); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(lst.Data.Children))
	for _, child := range lst.Data.Children {
		d := child.Data
		author := d.Author
		if author == "" {
			author = model.DeletedAuthor
		}
		posts = append(posts, model.Post{
			ID:          d.ID,
			Subreddit:   d.Subreddit,
			Author:      author,
			Title:       d.Title,
			Body:        d.Selftext,
			URL:         d.URL,
			Permalink:   d.Permalink,
			CreatedUTC:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
			Score:       d.Score,
			NumComments: d.NumComments,
		})
	}
	logging.Info("feed_fetched", map[string]any{"subreddits": len(subreddits), "posts": len(posts)})
	return posts, nil
}

// ensureToken fetches or refreshes the script-app token.
func (c *RedditClient) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}
	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.creds.Username},
		"password":   {c.creds.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed: token request status %d", resp.StatusCode)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("feed: empty access token")
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return nil
}

// getJSON performs a rate-limited GET with retries on 429 and 5xx.
func (c *RedditClient) getJSON(ctx context.Context, u string, out any) error {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode == http.StatusOK:
				return json.Unmarshal(body, out)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("feed: status %d", resp.StatusCode)
				if wait := retryAfter(resp); wait > 0 {
					if err := sleepCtx(ctx, wait); err != nil {
						return err
					}
					continue
				}
			default:
				return fmt.Errorf("feed: status %d", resp.StatusCode)
			}
		}
		backoff := time.Duration(1<<attempt)*time.Second + time.Duration(rand.Intn(250))*time.Millisecond
		if err := sleepCtx(ctx, backoff); err != nil {
			return err
		}
	}
	return lastErr
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
