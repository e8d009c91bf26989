package app

import (
	"context"
	"fmt"

	"github.com/example/flairbot/internal/core/flair"
	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/ports/secondary"
)

// TrackingServiceImpl implements the TrackingService interface.
// Every call reloads the log so it reflects what the daemon last persisted.
type TrackingServiceImpl struct {
	store     *TrackingStore
	forum     secondary.ForumClient
	community string
	timing    flair.Timing
	now       Clock
}

// NewTrackingService creates a new TrackingService with injected dependencies.
// forum may be nil when only the local log is inspected.
func NewTrackingService(store *TrackingStore, forum secondary.ForumClient, community string, timing flair.Timing, now Clock) *TrackingServiceImpl {
	return &TrackingServiceImpl{
		store:     store,
		forum:     forum,
		community: community,
		timing:    timing,
		now:       now,
	}
}

// ListTracked returns every in-flight submission, ordered by ID.
func (s *TrackingServiceImpl) ListTracked(ctx context.Context) ([]*primary.TrackedItem, error) {
	if err := s.store.Load(ctx); err != nil {
		return nil, err
	}

	ids := s.store.TrackedIDs()
	items := make([]*primary.TrackedItem, len(ids))
	for i, id := range ids {
		messageID, _ := s.store.FindBySubmission(id)
		items[i] = &primary.TrackedItem{SubmissionID: id, MessageID: messageID}
	}
	return items, nil
}

// Forget drops a submission from the tracking log.
func (s *TrackingServiceImpl) Forget(ctx context.Context, submissionID string) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	if !s.store.Contains(submissionID) {
		return fmt.Errorf("submission %s is not tracked", submissionID)
	}
	s.store.Remove(ctx, submissionID)
	return nil
}

// InspectPhases classifies the newest submissions of the community.
func (s *TrackingServiceImpl) InspectPhases(ctx context.Context, limit int) ([]*primary.SubmissionPhase, error) {
	if s.forum == nil {
		return nil, fmt.Errorf("no forum client configured")
	}
	if err := s.store.Load(ctx); err != nil {
		return nil, err
	}

	submissions, err := s.forum.NewSubmissions(ctx, s.community, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list new submissions: %w", err)
	}

	now := s.now()
	phases := make([]*primary.SubmissionPhase, len(submissions))
	for i, sub := range submissions {
		tracked := s.store.Contains(sub.ID)
		phases[i] = &primary.SubmissionPhase{
			SubmissionID: sub.ID,
			Author:       sub.Author,
			FlairText:    sub.FlairText,
			Age:          flair.Age(now, sub.CreatedAt),
			Phase:        string(flair.ComputePhase(now, factsOf(sub), tracked, s.timing)),
			Tracked:      tracked,
		}
	}
	return phases, nil
}

var _ primary.TrackingService = (*TrackingServiceImpl)(nil)
