package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services/fetcher"
	"github.com/j-veylop/langstats-tui/internal/stats"
)

func printCommand() *cli.Command {
	return &cli.Command{
		Name:  "print",
		Usage: "print the skills panel and exit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "login",
				Aliases: []string{"l"},
				Usage:   "GitHub login (defaults to the active profile)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of text",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "bypass the cache",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mgr, err := openManager(cmd.String("login"))
			if err != nil {
				return err
			}
			defer closeManager(mgr)

			login := cmd.String("login")
			if login == "" {
				login = mgr.ActiveLogin()
			}
			if login == "" {
				return errors.New("no GitHub login configured")
			}

			fetch := mgr.FetchLanguageStats
			if cmd.Bool("refresh") {
				fetch = mgr.Refresh
			}
			snap, fetchErr := fetch(ctx, login)
			if fetchErr != nil && !errors.Is(fetchErr, fetcher.ErrStatsUnavailable) {
				return fetchErr
			}

			report := newReport(login, snap, fetchErr)
			if cmd.Bool("json") {
				return writeJSON(cmd.Root().Writer, report)
			}
			return writeText(cmd.Root().Writer, report)
		},
	}
}

type languageRow struct {
	Name    string `json:"name"`
	Bytes   int64  `json:"bytes"`
	Percent int    `json:"percent"`
}

type categoryRow struct {
	Tag     string `json:"tag"`
	Title   string `json:"title"`
	Bytes   int64  `json:"bytes"`
	Percent int    `json:"percent"`
}

// report is the printable form of one snapshot.
type report struct {
	FetchedAt   time.Time             `json:"fetchedAt,omitzero"`
	ExpiresAt   time.Time             `json:"expiresAt,omitzero"`
	Login       string                `json:"login"`
	Source      models.SnapshotSource `json:"source,omitempty"`
	Error       string                `json:"error,omitempty"`
	Languages   []languageRow         `json:"languages"`
	Categories  []categoryRow         `json:"categories"`
	TotalBytes  int64                 `json:"totalBytes"`
	Repos       int                   `json:"repos"`
	Forks       int                   `json:"forks"`
	Skipped     int                   `json:"skipped"`
	Unavailable bool                  `json:"unavailable"`
}

func newReport(login string, snap models.Snapshot, fetchErr error) report {
	r := report{
		Login:      login,
		FetchedAt:  snap.FetchedAt,
		ExpiresAt:  snap.ExpiresAt,
		Source:     snap.Source,
		TotalBytes: snap.Stats.Total(),
		Repos:      snap.Repos,
		Forks:      snap.Forks,
		Skipped:    snap.Skipped,
		Languages:  []languageRow{},
	}
	if fetchErr != nil {
		r.Unavailable = true
		r.Error = fetchErr.Error()
	}

	for _, l := range stats.TopLanguages(snap.Stats, stats.TopN) {
		r.Languages = append(r.Languages, languageRow{Name: l.Name, Bytes: l.Bytes, Percent: l.Percent})
	}
	for _, c := range stats.CategoryShares(snap.Stats) {
		r.Categories = append(r.Categories, categoryRow{Tag: c.Tag, Title: c.Title, Bytes: c.Bytes, Percent: c.Percent})
	}
	return r
}

func writeJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeText(w io.Writer, r report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Skills: @%s\n", r.Login)
	switch {
	case r.Unavailable:
		fmt.Fprintf(&b, "Language stats unavailable: %s\n", r.Error)
	case r.TotalBytes == 0:
		b.WriteString("No language data\n")
	default:
		fmt.Fprintf(&b, "%d repos, %s, fetched %s (%s)\n",
			r.Repos, humanize.Bytes(uint64(r.TotalBytes)), humanize.Time(r.FetchedAt), r.Source)
	}

	b.WriteString("\nProgramming\n")
	if len(r.Languages) == 0 {
		b.WriteString("  -\n")
	}
	for _, l := range r.Languages {
		fmt.Fprintf(&b, "  %-20s %3d%%  %s\n", l.Name, l.Percent, humanize.Bytes(uint64(max(l.Bytes, 0))))
	}

	b.WriteString("\nCategories\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "  %-20s %3d%%\n", c.Title, c.Percent)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
