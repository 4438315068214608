package github

import (
	"context"
	"errors"
	"io"
	"maps"
	"net/http"
	"strings"
	"testing"
)

// MockRoundTripper is a http.RoundTripper driven by a function.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, token string, fn func(req *http.Request) (*http.Response, error)) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Token:      token,
		HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: fn}},
	})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return c
}

func TestListRepos(t *testing.T) {
	var gotReq *http.Request
	c := newTestClient(t, "secret", func(req *http.Request) (*http.Response, error) {
		gotReq = req
		return jsonResponse(200, `[
			{"name":"site","full_name":"octocat/site","fork":false,
			 "languages_url":"https://api.github.com/repos/octocat/site/languages"},
			{"name":"linux","full_name":"octocat/linux","fork":true,
			 "languages_url":"https://api.github.com/repos/octocat/linux/languages"}
		]`), nil
	})

	repos, err := c.ListRepos(context.Background(), "octocat", 10)
	if err != nil {
		t.Fatalf("ListRepos() failed: %v", err)
	}

	if gotReq.URL.Path != "/users/octocat/repos" {
		t.Errorf("path = %s", gotReq.URL.Path)
	}
	if gotReq.URL.Query().Get("per_page") != "10" {
		t.Errorf("per_page = %s", gotReq.URL.Query().Get("per_page"))
	}
	if gotReq.URL.Query().Get("page") != "" {
		t.Error("only the first page should be requested")
	}
	if got := gotReq.Header.Get("Authorization"); got != "token secret" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotReq.Header.Get("Accept"); got != "application/vnd.github+json" {
		t.Errorf("Accept = %q", got)
	}
	if gotReq.Header.Get("User-Agent") == "" {
		t.Error("User-Agent not set")
	}

	if len(repos) != 2 {
		t.Fatalf("len(repos) = %d, want 2", len(repos))
	}
	if repos[0].Fork || !repos[1].Fork {
		t.Errorf("fork flags = %v, %v", repos[0].Fork, repos[1].Fork)
	}
	if repos[0].LanguagesURL != "https://api.github.com/repos/octocat/site/languages" {
		t.Errorf("LanguagesURL = %s", repos[0].LanguagesURL)
	}
}

func TestListRepos_NoToken(t *testing.T) {
	c := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "" {
			t.Error("Authorization sent without a token")
		}
		return jsonResponse(200, `[]`), nil
	})

	repos, err := c.ListRepos(context.Background(), "octocat", 10)
	if err != nil {
		t.Fatalf("ListRepos() failed: %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("len(repos) = %d", len(repos))
	}
}

func TestListRepos_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    func() (*http.Response, error)
		check   func(t *testing.T, err error)
		wantErr bool
	}{
		{
			name: "Transport",
			resp: func() (*http.Response, error) { return nil, errors.New("connection refused") },
			check: func(t *testing.T, err error) {
				if !strings.Contains(err.Error(), "connection refused") {
					t.Errorf("error = %v", err)
				}
			},
		},
		{
			name: "NotFound",
			resp: func() (*http.Response, error) { return jsonResponse(404, `{"message":"Not Found"}`), nil },
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("error %v is not an APIError", err)
				}
				if !apiErr.NotFound() || apiErr.Message != "Not Found" {
					t.Errorf("apiErr = %+v", apiErr)
				}
			},
		},
		{
			name: "RateLimited",
			resp: func() (*http.Response, error) {
				r := jsonResponse(403, `{"message":"API rate limit exceeded"}`)
				r.Header.Set("X-RateLimit-Remaining", "0")
				r.Header.Set("X-RateLimit-Reset", "1760000000")
				return r, nil
			},
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) || !apiErr.RateLimited {
					t.Fatalf("error %v should be a rate limit APIError", err)
				}
				if apiErr.ResetAt.Unix() != 1760000000 {
					t.Errorf("ResetAt = %v", apiErr.ResetAt)
				}
			},
		},
		{
			name: "MalformedJSON",
			resp: func() (*http.Response, error) { return jsonResponse(200, `{"not":"an array"}`), nil },
			check: func(t *testing.T, err error) {
				if !strings.Contains(err.Error(), "parse") {
					t.Errorf("error = %v", err)
				}
			},
		},
		{
			name: "PlainTextError",
			resp: func() (*http.Response, error) { return jsonResponse(502, "bad gateway"), nil },
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.Message != "bad gateway" {
					t.Errorf("error = %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "", func(*http.Request) (*http.Response, error) { return tt.resp() })
			_, err := c.ListRepos(context.Background(), "octocat", 10)
			if err == nil {
				t.Fatal("ListRepos() should fail")
			}
			tt.check(t, err)
		})
	}
}

func TestListRepos_EmptyLogin(t *testing.T) {
	c := newTestClient(t, "", func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	if _, err := c.ListRepos(context.Background(), "", 10); err == nil {
		t.Error("ListRepos(\"\") should fail")
	}
}

func TestRepoLanguages(t *testing.T) {
	c := newTestClient(t, "secret", func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/repos/octocat/site/languages" {
			t.Errorf("path = %s", req.URL.Path)
		}
		return jsonResponse(200, `{"TypeScript": 150, "CSS": 20}`), nil
	})

	got, err := c.RepoLanguages(context.Background(), "https://api.github.com/repos/octocat/site/languages")
	if err != nil {
		t.Fatalf("RepoLanguages() failed: %v", err)
	}
	want := map[string]int64{"TypeScript": 150, "CSS": 20}
	if !maps.Equal(got, want) {
		t.Errorf("RepoLanguages() = %v, want %v", got, want)
	}
}

func TestRepoLanguages_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
	}{
		{"RelativeURL", "/repos/x/y/languages", `{}`},
		{"NegativeBytes", "https://api.github.com/repos/x/y/languages", `{"Go": -1}`},
		{"WrongShape", "https://api.github.com/repos/x/y/languages", `["Go"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "", func(*http.Request) (*http.Response, error) {
				return jsonResponse(200, tt.body), nil
			})
			if _, err := c.RepoLanguages(context.Background(), tt.url); err == nil {
				t.Error("RepoLanguages() should fail")
			}
		})
	}
}

func TestRepoLanguages_TokenStaysOnAPIHost(t *testing.T) {
	c := newTestClient(t, "secret", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "" {
			t.Errorf("token leaked to %s", req.URL.Host)
		}
		return jsonResponse(200, `{}`), nil
	})

	if _, err := c.RepoLanguages(context.Background(), "https://evil.example.com/languages"); err != nil {
		t.Fatalf("RepoLanguages() failed: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://ghe.example.com/api/v3/"})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	if c.BaseURL() != "https://ghe.example.com/api/v3" {
		t.Errorf("BaseURL() = %s", c.BaseURL())
	}
	if c.http == nil || c.http.Timeout != defaultTimeout {
		t.Error("default http client not configured")
	}

	if _, err := NewClient(Options{BaseURL: "not a url"}); err == nil {
		t.Error("NewClient() should reject an invalid base URL")
	}
}

func TestClient_EnterpriseBasePath(t *testing.T) {
	var path string
	c, _ := NewClient(Options{
		BaseURL: "https://ghe.example.com/api/v3",
		HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			path = req.URL.Path
			return jsonResponse(200, `[]`), nil
		}}},
	})

	_, _ = c.ListRepos(context.Background(), "octocat", 5)
	if path != "/api/v3/users/octocat/repos" {
		t.Errorf("path = %s", path)
	}
}

func TestWithToken(t *testing.T) {
	base := newTestClient(t, "a", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `[]`), nil
	})
	other := base.WithToken(" b ")

	if base.token != "a" || other.token != "b" {
		t.Errorf("tokens = %q, %q", base.token, other.token)
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{&APIError{StatusCode: 500}, "github error (status 500)"},
		{&APIError{StatusCode: 404, Message: "Not Found"}, "github error (status 404): Not Found"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	rl := &APIError{StatusCode: 429, RateLimited: true}
	if !strings.Contains(rl.Error(), "rate limited") {
		t.Errorf("Error() = %q", rl.Error())
	}
}
