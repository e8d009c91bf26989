package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/flairbot/internal/core/effects"
	"github.com/example/flairbot/internal/ctxutil"
	"github.com/example/flairbot/internal/ports/secondary"
)

// auditor appends audit entries, stamping them with the cycle from ctx.
// Audit failures never affect moderation; they are logged and dropped.
type auditor struct {
	log    secondary.AuditLog
	logger *zap.Logger
	now    Clock
}

func newAuditor(log secondary.AuditLog, logger *zap.Logger) *auditor {
	return &auditor{log: log, logger: logger, now: time.Now}
}

func (a *auditor) record(ctx context.Context, submissionID, messageID string, action effects.AuditAction, detail string) {
	if a == nil || a.log == nil {
		return
	}
	entry := &secondary.AuditRecord{
		ID:           uuid.NewString(),
		CycleID:      ctxutil.CycleFromContext(ctx),
		SubmissionID: submissionID,
		MessageID:    messageID,
		Action:       string(action),
		Detail:       detail,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.log.Append(ctx, entry); err != nil {
		a.logger.Warn("failed to append audit entry",
			zap.String("action", entry.Action),
			zap.String("submission", submissionID),
			zap.Error(err),
		)
	}
}
