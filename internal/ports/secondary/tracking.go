// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// SnapshotStore defines the secondary port for tracking log persistence.
// The whole log is one record, rewritten wholesale on every save.
type SnapshotStore interface {
	// LoadSnapshot returns the saved submission -> message mapping,
	// or ErrNoSnapshot if nothing was ever saved.
	LoadSnapshot(ctx context.Context) (map[string]string, error)

	// SaveSnapshot replaces the saved mapping.
	SaveSnapshot(ctx context.Context, snapshot map[string]string) error
}

// AuditLog defines the secondary port for the moderation audit trail.
type AuditLog interface {
	// Append records a moderation outcome.
	Append(ctx context.Context, entry *AuditRecord) error

	// List returns recent entries, newest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditRecord, error)
}

// AuditRecord represents one audit log entry as stored in persistence.
type AuditRecord struct {
	ID           string
	CycleID      string // Empty string means null
	SubmissionID string
	MessageID    string // Empty string means null
	Action       string
	Detail       string // Empty string means null
	CreatedAt    time.Time
}

// AuditFilters contains filter options for listing audit entries.
type AuditFilters struct {
	SubmissionID string
	Action       string
	Limit        int
}
