package app

import (
	"context"
	"fmt"

	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
)

// HistoryServiceImpl implements the HistoryService interface.
type HistoryServiceImpl struct {
	auditLog secondary.AuditLog
}

// NewHistoryService creates a new HistoryService with injected dependencies.
func NewHistoryService(auditLog secondary.AuditLog) *HistoryServiceImpl {
	return &HistoryServiceImpl{auditLog: auditLog}
}

// ListHistory returns recent audit entries, newest first.
func (s *HistoryServiceImpl) ListHistory(ctx context.Context, filters primary.HistoryFilters) ([]*primary.HistoryEntry, error) {
	if s.auditLog == nil {
		return nil, fmt.Errorf("moderation history requires the sqlite store")
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	records, err := s.auditLog.List(ctx, secondary.AuditFilters{
		SubmissionID: filters.SubmissionID,
		Action:       filters.Action,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]*primary.HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToEntry(r)
	}
	return entries, nil
}

// Helper methods

func (s *HistoryServiceImpl) recordToEntry(r *secondary.AuditRecord) *primary.HistoryEntry {
	return &primary.HistoryEntry{
		ID:           r.ID,
		CycleID:      r.CycleID,
		SubmissionID: r.SubmissionID,
		MessageID:    r.MessageID,
		Action:       r.Action,
		Detail:       r.Detail,
		CreatedAt:    r.CreatedAt,
	}
}

var _ primary.HistoryService = (*HistoryServiceImpl)(nil)
