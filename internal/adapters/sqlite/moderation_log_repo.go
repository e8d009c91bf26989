package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/flairbot/internal/db"
	"github.com/example/flairbot/internal/ports/secondary"
)

// ModerationLogRepository implements secondary.AuditLog with SQLite.
type ModerationLogRepository struct {
	db *sql.DB
}

// NewModerationLogRepository creates a new SQLite moderation log repository.
func NewModerationLogRepository(db *sql.DB) *ModerationLogRepository {
	return &ModerationLogRepository{db: db}
}

// Append persists a new audit entry.
func (r *ModerationLogRepository) Append(ctx context.Context, entry *secondary.AuditRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO moderation_log (id, cycle_id, submission_id, message_id, action, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullString(entry.CycleID),
		entry.SubmissionID,
		nullString(entry.MessageID),
		entry.Action,
		nullString(entry.Detail),
		entry.CreatedAt.UTC().Format(db.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to append moderation log entry: %w", err)
	}
	return nil
}

// List retrieves audit entries matching the given filters, newest first.
func (r *ModerationLogRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	query := `SELECT id, cycle_id, submission_id, message_id, action, detail, created_at FROM moderation_log WHERE 1=1`
	args := []any{}

	if filters.SubmissionID != "" {
		query += " AND submission_id = ?"
		args = append(args, filters.SubmissionID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation log: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditRecord
	for rows.Next() {
		var (
			cycleID   sql.NullString
			messageID sql.NullString
			detail    sql.NullString
			createdAt string
		)

		record := &secondary.AuditRecord{}
		err := rows.Scan(&record.ID,
			&cycleID,
			&record.SubmissionID,
			&messageID,
			&record.Action,
			&detail,
			&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation log entry: %w", err)
		}
		record.CycleID = cycleID.String
		record.MessageID = messageID.String
		record.Detail = detail.String
		record.CreatedAt, err = time.Parse(db.TimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp on moderation log entry %s: %w", record.ID, err)
		}

		entries = append(entries, record)
	}

	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ secondary.AuditLog = (*ModerationLogRepository)(nil)
