package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/stats"
)

// InsertSnapshot stores a snapshot and its per-language byte counts.
func (db *DB) InsertSnapshot(ctx context.Context, snap models.Snapshot) (int64, error) {
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin snapshot insert: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("Failed to roll back snapshot insert", "error", err)
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (login, fetched_at, expires_at, repos, forks, skipped, total_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.Login,
		fetchedAt.UnixMilli(),
		snap.ExpiresAt.UnixMilli(),
		snap.Repos,
		snap.Forks,
		snap.Skipped,
		snap.Stats.Total(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_languages (snapshot_id, language, bytes) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare language insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for lang, b := range snap.Stats {
		if _, err := stmt.ExecContext(ctx, id, lang, b); err != nil {
			return 0, fmt.Errorf("failed to insert language %q: %w", lang, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recent stored snapshot for login, or nil.
func (db *DB) LatestSnapshot(ctx context.Context, login string) (*models.Snapshot, error) {
	snaps, err := db.querySnapshots(ctx, `
		SELECT id, login, fetched_at, expires_at, repos, forks, skipped
		FROM snapshots WHERE login = ?
		ORDER BY fetched_at DESC, id DESC LIMIT 1`, login)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

// SnapshotsSince returns the snapshots for login fetched at or after since,
// oldest first. A zero since returns all of them.
func (db *DB) SnapshotsSince(ctx context.Context, login string, since time.Time) ([]models.Snapshot, error) {
	var sinceMs int64
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}
	return db.querySnapshots(ctx, `
		SELECT id, login, fetched_at, expires_at, repos, forks, skipped
		FROM snapshots WHERE login = ? AND fetched_at >= ?
		ORDER BY fetched_at ASC, id ASC`, login, sinceMs)
}

// ShareHistory reduces the stored snapshots for login within tr to category
// shares.
func (db *DB) ShareHistory(ctx context.Context, login string, tr models.TimeRange, now time.Time) (*models.HistorySummary, error) {
	snaps, err := db.SnapshotsSince(ctx, login, tr.Since(now))
	if err != nil {
		return nil, err
	}

	summary := &models.HistorySummary{
		Login:     login,
		TimeRange: tr,
		Points:    make([]models.SharePoint, 0, len(snaps)),
	}
	for _, s := range snaps {
		summary.Points = append(summary.Points, models.SharePoint{
			FetchedAt:  s.FetchedAt,
			Shares:     stats.ShareMap(s.Stats),
			TopLang:    stats.TopLanguage(s.Stats),
			TotalBytes: s.Stats.Total(),
			Languages:  len(s.Stats),
		})
	}
	if len(snaps) > 0 {
		summary.First = snaps[0].FetchedAt
		summary.Last = snaps[len(snaps)-1].FetchedAt
	}
	return summary, nil
}

// PruneSnapshots deletes snapshots fetched before olderThan.
func (db *DB) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin prune: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ms := olderThan.UnixMilli()
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshot_languages
		WHERE snapshot_id IN (SELECT id FROM snapshots WHERE fetched_at < ?)`, ms); err != nil {
		return 0, fmt.Errorf("failed to prune snapshot languages: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, ms)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return n, nil
}

// CountSnapshots returns the number of stored snapshots for login.
func (db *DB) CountSnapshots(ctx context.Context, login string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE login = ?`, login).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

func (db *DB) querySnapshots(ctx context.Context, query string, args ...any) ([]models.Snapshot, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}

	var (
		snaps []models.Snapshot
		ids   []int64
	)
	for rows.Next() {
		var (
			s                   models.Snapshot
			id                  int64
			fetchedAt, expireAt int64
		)
		if err := rows.Scan(&id, &s.Login, &fetchedAt, &expireAt, &s.Repos, &s.Forks, &s.Skipped); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.FetchedAt = time.UnixMilli(fetchedAt)
		s.ExpiresAt = time.UnixMilli(expireAt)
		s.Source = models.SourceNetwork
		s.Stats = models.LanguageStats{}
		snaps = append(snaps, s)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	_ = rows.Close()

	for i, id := range ids {
		if err := db.loadLanguages(ctx, id, snaps[i].Stats); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

func (db *DB) loadLanguages(ctx context.Context, snapshotID int64, into models.LanguageStats) error {
	rows, err := db.QueryContext(ctx,
		`SELECT language, bytes FROM snapshot_languages WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("failed to query snapshot languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			lang string
			b    int64
		)
		if err := rows.Scan(&lang, &b); err != nil {
			return fmt.Errorf("failed to scan snapshot language: %w", err)
		}
		into[lang] = b
	}
	return rows.Err()
}
