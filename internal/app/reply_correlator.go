package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/flairbot/internal/core/flair"
	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
	"github.com/example/flairbot/internal/templates"
)

// ReplyCorrelator matches inbox replies to tracked submissions and applies
// the flair the author asked for.
type ReplyCorrelator struct {
	forum    secondary.ForumClient
	store    *TrackingStore
	catalog  *flair.Catalog
	executor EffectExecutor
	logger   *zap.Logger
}

// NewReplyCorrelator creates a new ReplyCorrelator with injected dependencies.
func NewReplyCorrelator(forum secondary.ForumClient, store *TrackingStore, catalog *flair.Catalog, executor EffectExecutor, logger *zap.Logger) *ReplyCorrelator {
	return &ReplyCorrelator{
		forum:    forum,
		store:    store,
		catalog:  catalog,
		executor: executor,
		logger:   logger,
	}
}

// Name returns the pass name.
func (c *ReplyCorrelator) Name() string { return primary.PassReplies }

// Run processes every unread inbox item and marks each one read.
func (c *ReplyCorrelator) Run(ctx context.Context) (*primary.PassReport, error) {
	report := &primary.PassReport{Pass: c.Name()}

	messages, err := c.forum.UnreadMessages(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list unread messages: %w", err)
	}

	for _, msg := range messages {
		report.Seen++
		if err := c.handle(ctx, msg, report); err != nil {
			return report, err
		}
		if err := c.forum.MarkRead(ctx, msg.ID); err != nil {
			return report, fmt.Errorf("failed to mark %s read: %w", msg.ID, err)
		}
	}

	return report, nil
}

// handle resolves one inbox item. Items that are not replies to a tracked
// prompt are ignored; the caller still marks them read.
func (c *ReplyCorrelator) handle(ctx context.Context, msg *secondary.MessageRecord, report *primary.PassReport) error {
	if msg.Kind != secondary.MessageKindPrivate {
		return nil
	}

	// Keyed off the thread root so a retry after a rejection still
	// resolves to the same submission.
	submissionID, ok := c.store.FindByMessage(msg.ThreadRootID())
	if !ok {
		return nil
	}

	rejection, err := templates.RenderRejection(msg.Body)
	if err != nil {
		return err
	}

	plan := flair.GeneratePlanReply(c.catalog, flair.ReplyPlanInput{
		SubmissionID: submissionID,
		MessageID:    msg.ID,
		Body:         msg.Body,
		Rejection:    rejection,
	})

	result, err := c.executor.Execute(ctx, plan.Effects)
	if err != nil {
		return fmt.Errorf("failed to resolve reply %s for %s: %w", msg.ID, submissionID, err)
	}

	report.Flaired += result.Flaired
	report.Forbidden += result.Forbidden
	report.Untracked += result.Untracked
	report.Rejected += result.Replied

	if plan.Matched && result.Flaired > 0 {
		c.logger.Info("applied requested flair",
			zap.String("submission", submissionID),
			zap.String("flair", flair.TitleCase(plan.Flair.Name)),
			zap.String("author", msg.Author),
		)
	}
	return nil
}

var _ primary.Pass = (*ReplyCorrelator)(nil)
