package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// Tests use it via GetSchemaSQL() instead of hardcoding their own tables, so
// a repository that references a missing column fails immediately with
// "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Tracking log: one row per in-flight submission
CREATE TABLE IF NOT EXISTS tracked_submissions (
	submission_id TEXT PRIMARY KEY,
	message_id TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tracked_submissions_message ON tracked_submissions(message_id);

-- Marker row: present once the tracking log has been written
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	saved_at TEXT NOT NULL
);

-- Moderation history
CREATE TABLE IF NOT EXISTS moderation_log (
	id TEXT PRIMARY KEY,
	cycle_id TEXT,
	submission_id TEXT NOT NULL,
	message_id TEXT,
	action TEXT NOT NULL CHECK(action IN ('prompted', 'notified', 'rejected_reply', 'flaired', 'flair_forbidden', 'removed', 'remove_forbidden', 'untracked')),
	detail TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moderation_log_submission ON moderation_log(submission_id);
CREATE INDEX IF NOT EXISTS idx_moderation_log_action ON moderation_log(action);
CREATE INDEX IF NOT EXISTS idx_moderation_log_created ON moderation_log(created_at);
`

// TimeLayout is the fixed-width UTC layout used for every stored timestamp,
// so lexical order in SQL equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// InitSchema creates the database schema
func InitSchema(db *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations(db)
	}

	// A tracking table without version bookkeeping predates migrations
	var legacyCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tracked_submissions'").Scan(&legacyCount)
	if err != nil {
		return err
	}
	if legacyCount > 0 {
		return RunMigrations(db)
	}

	// Completely fresh install - create modern schema directly and mark
	// every migration as applied
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(schemaVersionSQL); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
