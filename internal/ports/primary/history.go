package primary

import (
	"context"
	"time"
)

// HistoryService defines the primary port for the moderation audit trail.
type HistoryService interface {
	// ListHistory returns recent audit entries, newest first.
	ListHistory(ctx context.Context, filters HistoryFilters) ([]*HistoryEntry, error)
}

// HistoryFilters contains filter options for listing history.
type HistoryFilters struct {
	SubmissionID string
	Action       string
	Limit        int
}

// HistoryEntry represents an audit log entry at the port boundary.
type HistoryEntry struct {
	ID           string
	CycleID      string
	SubmissionID string
	MessageID    string
	Action       string
	Detail       string
	CreatedAt    time.Time
}
