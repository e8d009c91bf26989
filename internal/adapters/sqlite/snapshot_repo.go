// Package sqlite contains SQLite implementations of the persistence ports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/flairbot/internal/db"
	"github.com/example/flairbot/internal/ports/secondary"
)

// SnapshotRepository implements secondary.SnapshotStore with SQLite.
type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// LoadSnapshot reads the whole tracking log.
// Returns secondary.ErrNoSnapshot if the log has never been written.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (map[string]string, error) {
	var savedAt string
	err := r.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot marker: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT submission_id, message_id FROM tracked_submissions")
	if err != nil {
		return nil, fmt.Errorf("failed to load tracking log: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]string)
	for rows.Next() {
		var submissionID, messageID string
		if err := rows.Scan(&submissionID, &messageID); err != nil {
			return nil, fmt.Errorf("failed to scan tracked submission: %w", err)
		}
		snapshot[submissionID] = messageID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load tracking log: %w", err)
	}

	return snapshot, nil
}

// SaveSnapshot replaces the whole tracking log in one transaction.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracked_submissions"); err != nil {
		return fmt.Errorf("failed to clear tracking log: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO tracked_submissions (submission_id, message_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for submissionID, messageID := range snapshot {
		if _, err := stmt.ExecContext(ctx, submissionID, messageID); err != nil {
			return fmt.Errorf("failed to write tracked submission %s: %w", submissionID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at",
		r.now().UTC().Format(db.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tracking log: %w", err)
	}
	return nil
}

// SavedAt returns when the tracking log was last written, or the zero time.
func (r *SnapshotRepository) SavedAt(ctx context.Context) (time.Time, error) {
	var savedAt string
	err := r.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read snapshot marker: %w", err)
	}
	return time.Parse(db.TimeLayout, savedAt)
}

var _ secondary.SnapshotStore = (*SnapshotRepository)(nil)
