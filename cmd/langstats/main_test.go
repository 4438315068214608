package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services/fetcher"
	"github.com/j-veylop/langstats-tui/internal/version"
)

func TestNewReport(t *testing.T) {
	snap := models.Snapshot{
		FetchedAt: time.Now(),
		Stats:     models.LanguageStats{"TypeScript": 60, "CSS": 10, "SQL": 30},
		Login:     "octocat",
		Source:    models.SourceNetwork,
		Repos:     2,
	}

	r := newReport("octocat", snap, nil)
	if r.Unavailable {
		t.Error("report should be available")
	}
	if r.TotalBytes != 100 {
		t.Errorf("TotalBytes = %d, want 100", r.TotalBytes)
	}
	if len(r.Languages) != 3 || r.Languages[0].Name != "TypeScript" {
		t.Errorf("Languages = %+v", r.Languages)
	}

	want := map[string]int{"Web Development": 70, "Databases": 30, "AI/ML & Cloud": 0}
	for _, c := range r.Categories {
		if c.Percent != want[c.Title] {
			t.Errorf("%s = %d%%, want %d%%", c.Title, c.Percent, want[c.Title])
		}
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		name  string
		snap  models.Snapshot
		err   error
		wants []string
	}{
		{
			name:  "Stats",
			snap:  models.Snapshot{Stats: models.LanguageStats{"Go": 80, "SQL": 20}, Repos: 1, Source: models.SourceCache},
			wants: []string{"@octocat", "Go", "80%", "Databases", "20%", "(cache)"},
		},
		{
			name:  "Empty",
			wants: []string{"No language data", "Web Development", "0%"},
		},
		{
			name:  "Unavailable",
			err:   errors.Join(fetcher.ErrStatsUnavailable, errors.New("HTTP 503")),
			wants: []string{"unavailable", "HTTP 503", "Databases"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeText(&buf, newReport("octocat", tt.snap, tt.err)); err != nil {
				t.Fatalf("writeText: %v", err)
			}
			out := buf.String()
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := newReport("octocat", models.Snapshot{Stats: models.LanguageStats{"Python": 10}}, nil)
	if err := writeJSON(&buf, r); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["login"] != "octocat" {
		t.Errorf("login = %v", got["login"])
	}
	if _, ok := got["fetchedAt"]; ok {
		t.Error("zero fetchedAt should be omitted")
	}
	if cats, ok := got["categories"].([]any); !ok || len(cats) != 3 {
		t.Errorf("categories = %v", got["categories"])
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &buf

	if err := cmd.Run(context.Background(), []string{"langstats", "version"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), version.Name) {
		t.Errorf("output = %q", buf.String())
	}
}

func setTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GITHUB_USERNAME", "octocat")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "langstats.db"))
	t.Setenv("PROFILES_PATH", filepath.Join(dir, "profiles.json"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestPurgeCacheCommand(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &buf

	err := cmd.Run(context.Background(), []string{"langstats", "purge-cache", "--history", "720h"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, want := range []string{"expired cache entries removed", "snapshots older than"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q: %q", want, buf.String())
		}
	}
}

func TestPurgeCacheCommand_MissingLogin(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &buf

	if err := cmd.Run(context.Background(), []string{"langstats", "purge-cache", "--login", "octocat"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "No cache entry for @octocat") {
		t.Errorf("output = %q", buf.String())
	}
}
