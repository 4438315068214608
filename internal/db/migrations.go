package db

import (
	"context"
	"fmt"
)

// migrations are applied in order. The schema version is kept in
// PRAGMA user_version; entries must never be edited once released.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		stored_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_expires ON cache_entries(expires_at);
	`,
	`
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		repos INTEGER DEFAULT 0,
		forks INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		total_bytes INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_login_time ON snapshots(login, fetched_at);

	CREATE TABLE IF NOT EXISTS snapshot_languages (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		language TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, language)
	);
	`,
}

// SchemaVersion returns the current PRAGMA user_version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (db *DB) migrate(ctx context.Context) error {
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to bump schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
