package primary

import (
	"context"
	"time"
)

// TrackingService defines the primary port for operator access to the
// tracking log.
type TrackingService interface {
	// ListTracked returns every in-flight submission, ordered by ID.
	ListTracked(ctx context.Context) ([]*TrackedItem, error)

	// Forget drops a submission from the tracking log.
	Forget(ctx context.Context, submissionID string) error

	// InspectPhases classifies the newest submissions of the community.
	InspectPhases(ctx context.Context, limit int) ([]*SubmissionPhase, error)
}

// TrackedItem represents an in-flight submission at the port boundary.
type TrackedItem struct {
	SubmissionID string
	MessageID    string
}

// SubmissionPhase represents a classified submission at the port boundary.
type SubmissionPhase struct {
	SubmissionID string
	Author       string
	FlairText    string
	Age          time.Duration
	Phase        string
	Tracked      bool
}
