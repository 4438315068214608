// Package models defines data structures and domain types.
package models

import (
	"maps"
	"time"
)

// LanguageStats maps a language name to the number of bytes written in it.
type LanguageStats map[string]int64

// Total returns the sum of all byte counts. It is computed on every call.
func (s LanguageStats) Total() int64 {
	var total int64
	for _, b := range s {
		total += b
	}
	return total
}

// Clone returns a deep copy. A nil receiver yields an empty, non-nil map.
func (s LanguageStats) Clone() LanguageStats {
	out := make(LanguageStats, len(s))
	maps.Copy(out, s)
	return out
}

// IsEmpty reports whether there is nothing to show.
func (s LanguageStats) IsEmpty() bool {
	return s.Total() == 0
}

// Repository is the subset of a GitHub repository listing entry we use.
type Repository struct {
	PushedAt     time.Time `json:"pushed_at"`
	Name         string    `json:"name"`
	FullName     string    `json:"full_name"`
	LanguagesURL string    `json:"languages_url"`
	HTMLURL      string    `json:"html_url"`
	Language     string    `json:"language,omitempty"`
	Fork         bool      `json:"fork"`
}

// SnapshotSource tells where a snapshot came from.
type SnapshotSource string

const (
	// SourceNetwork means the stats were fetched from the API just now.
	SourceNetwork SnapshotSource = "network"
	// SourceCache means the stats were served from the cache.
	SourceCache SnapshotSource = "cache"
)

// Snapshot is one LanguageStats value together with its expiry.
type Snapshot struct {
	FetchedAt time.Time      `json:"fetchedAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Stats     LanguageStats  `json:"stats"`
	Login     string         `json:"login"`
	Source    SnapshotSource `json:"source"`
	Repos     int            `json:"repos"`   // repositories that contributed
	Forks     int            `json:"forks"`   // forks left out
	Skipped   int            `json:"skipped"` // repositories whose languages could not be read
}

// IsExpired reports whether the snapshot should no longer be served at now.
// A zero ExpiresAt never expires.
func (s Snapshot) IsExpired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Age returns how long ago the stats were fetched.
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(s.FetchedAt)
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Stats = s.Stats.Clone()
	return s
}
