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

// TimeoutReconciler resolves tracked submissions: it untracks those that
// were flaired or vanished and removes those past the deadline.
type TimeoutReconciler struct {
	forum    secondary.ForumClient
	store    *TrackingStore
	executor EffectExecutor
	timing   flair.Timing
	logger   *zap.Logger
	now      Clock
}

// NewTimeoutReconciler creates a new TimeoutReconciler with injected dependencies.
func NewTimeoutReconciler(forum secondary.ForumClient, store *TrackingStore, executor EffectExecutor, timing flair.Timing, logger *zap.Logger, now Clock) *TimeoutReconciler {
	return &TimeoutReconciler{
		forum:    forum,
		store:    store,
		executor: executor,
		timing:   timing,
		logger:   logger,
		now:      now,
	}
}

// Name returns the pass name.
func (r *TimeoutReconciler) Name() string { return primary.PassReconcile }

// Run re-examines every tracked submission with one batch lookup.
func (r *TimeoutReconciler) Run(ctx context.Context) (*primary.PassReport, error) {
	report := &primary.PassReport{Pass: r.Name()}

	ids := r.store.TrackedIDs()
	if len(ids) == 0 {
		return report, nil
	}

	records, err := r.forum.SubmissionsByID(ctx, ids)
	if err != nil {
		return report, fmt.Errorf("failed to fetch tracked submissions: %w", err)
	}
	byID := make(map[string]*secondary.SubmissionRecord, len(records))
	for _, rec := range records {
		if rec != nil {
			byID[rec.ID] = rec
		}
	}

	now := r.now()
	for _, id := range ids {
		report.Seen++

		input := flair.ReconcilePlanInput{
			SubmissionID: id,
			Now:          now,
			Timing:       r.timing,
		}
		if rec, found := byID[id]; found && !rec.Removed {
			facts := factsOf(rec)
			input.Found = true
			input.Author = rec.Author
			input.Flaired = facts.Flaired
			input.CreatedAt = rec.CreatedAt

			notice, err := templates.RenderRemoval(rec.Shortlink)
			if err != nil {
				return report, err
			}
			input.RemovalNote = flair.Notice{Subject: templates.RemovalSubject, Body: notice}
		}

		plan := flair.GeneratePlanReconcile(input)
		if len(plan.Effects) == 0 {
			continue
		}

		result, err := r.executor.Execute(ctx, plan.Effects)
		if err != nil {
			return report, fmt.Errorf("failed to reconcile %s: %w", id, err)
		}
		report.Removed += result.Removed
		report.Forbidden += result.Forbidden
		report.Untracked += result.Untracked

		r.logger.Info("resolved tracked submission",
			zap.String("submission", id),
			zap.String("outcome", string(plan.Outcome)),
		)
	}

	return report, nil
}

var _ primary.Pass = (*TimeoutReconciler)(nil)
