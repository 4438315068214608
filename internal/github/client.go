// Package github is a small GitHub REST v3 client covering the two calls the
// stats fetcher needs: listing a user's repositories and reading one
// repository's language breakdown.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/version"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 1 << 20
)

// Options configures the Client.
type Options struct {
	// HTTPClient is used for every request. Nil means a client with Timeout.
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
}

// Client talks to the GitHub REST API.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	token   string
	ua      string
}

// NewClient creates a Client with defaults filled in.
func NewClient(o Options) (*Client, error) {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = version.Name + "/" + version.Short()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}

	base, err := url.Parse(strings.TrimRight(o.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid GitHub API URL %q", o.BaseURL)
	}

	return &Client{
		http:    o.HTTPClient,
		baseURL: base,
		token:   strings.TrimSpace(o.Token),
		ua:      o.UserAgent,
	}, nil
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListRepos returns the first page of login's public repositories, at most
// perPage of them. Later pages are never requested.
func (c *Client) ListRepos(ctx context.Context, login string, perPage int) ([]models.Repository, error) {
	if login == "" {
		return nil, fmt.Errorf("list repos: empty login")
	}
	u := c.baseURL.JoinPath("users", login, "repos")
	q := u.Query()
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()

	var repos []models.Repository
	if err := c.getJSON(ctx, u, &repos); err != nil {
		return nil, fmt.Errorf("list repos for %s: %w", login, err)
	}
	return repos, nil
}

// RepoLanguages fetches the language breakdown at languagesURL, which is the
// languages_url field of a repository listing entry.
func (c *Client) RepoLanguages(ctx context.Context, languagesURL string) (models.LanguageStats, error) {
	u, err := url.Parse(languagesURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid languages URL %q", languagesURL)
	}

	langs := models.LanguageStats{}
	if err := c.getJSON(ctx, u, &langs); err != nil {
		return nil, fmt.Errorf("languages %s: %w", u.Path, err)
	}
	for lang, b := range langs {
		if b < 0 {
			return nil, fmt.Errorf("languages %s: negative byte count for %s", u.Path, lang)
		}
	}
	return langs, nil
}

func (c *Client) getJSON(ctx context.Context, u *url.URL, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.ua)
	// The token only goes to the configured API host.
	if c.token != "" && strings.EqualFold(u.Host, c.baseURL.Host) {
		req.Header.Set("Authorization", "token "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	logger.Debug("github response",
		"path", u.Path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
		"rate_remaining", resp.Header.Get("X-RateLimit-Remaining"),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
