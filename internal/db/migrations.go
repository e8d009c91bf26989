package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_tracking_log",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "create_moderation_log",
		Up:      migrationV2,
	},
}

const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
`

// LatestVersion returns the version a fully migrated database reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// CurrentVersion returns the highest applied migration, or 0.
func CurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	// Create schema_version table if it doesn't exist
	if _, err := db.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := applyMigration(db, migration); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
	}
	defer tx.Rollback()

	if err := migration.Up(tx); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}
	return nil
}

// migrationV1 creates the tracking log and its written-once marker.
// Uses IF NOT EXISTS so unversioned databases carrying the table upgrade in place.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS tracked_submissions (
			submission_id TEXT PRIMARY KEY,
			message_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tracked_submissions_message ON tracked_submissions(message_id);
		CREATE TABLE IF NOT EXISTS snapshot_meta (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			saved_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tracking tables: %w", err)
	}

	// An unversioned table with rows has been written before
	_, err = tx.Exec(`
		INSERT OR IGNORE INTO snapshot_meta (id, saved_at)
		SELECT 1, strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE EXISTS (SELECT 1 FROM tracked_submissions)
	`)
	if err != nil {
		return fmt.Errorf("failed to backfill snapshot marker: %w", err)
	}
	return nil
}

// migrationV2 adds the moderation history.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE moderation_log (
			id TEXT PRIMARY KEY,
			cycle_id TEXT,
			submission_id TEXT NOT NULL,
			message_id TEXT,
			action TEXT NOT NULL CHECK(action IN ('prompted', 'notified', 'rejected_reply', 'flaired', 'flair_forbidden', 'removed', 'remove_forbidden', 'untracked')),
			detail TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX idx_moderation_log_submission ON moderation_log(submission_id);
		CREATE INDEX idx_moderation_log_action ON moderation_log(action);
		CREATE INDEX idx_moderation_log_created ON moderation_log(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create moderation_log: %w", err)
	}
	return nil
}
