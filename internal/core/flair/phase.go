package flair

import "time"

// Phase is the lifecycle position of a submission, computed on demand.
type Phase string

const (
	PhaseTooYoung    Phase = "too_young"    // inside the manual flairing grace period
	PhaseAwaitingTag Phase = "awaiting_tag" // untagged, untracked, eligible for a prompt
	PhaseInFlight    Phase = "in_flight"    // prompt sent, waiting on the author
	PhaseResolved    Phase = "resolved"     // tagged, removed or vanished
	PhaseExpired     Phase = "expired"      // past the deadline without ever being tracked
)

// Timing holds the two policy durations.
type Timing struct {
	PromptDelay     time.Duration
	RemovalDeadline time.Duration
}

// SubmissionFacts are the platform facts the phase depends on.
type SubmissionFacts struct {
	CreatedAt time.Time
	Flaired   bool
	Vanished  bool // deleted, removed or author no longer resolvable
}

// Age returns how long ago the submission was created.
func Age(now, createdAt time.Time) time.Duration {
	return now.Sub(createdAt)
}

// ComputePhase classifies a submission.
// Precedence: resolved > in flight > time based.
func ComputePhase(now time.Time, facts SubmissionFacts, tracked bool, timing Timing) Phase {
	if facts.Vanished || facts.Flaired {
		return PhaseResolved
	}
	if tracked {
		return PhaseInFlight
	}

	age := Age(now, facts.CreatedAt)
	switch {
	case age <= timing.PromptDelay:
		return PhaseTooYoung
	case age <= timing.RemovalDeadline:
		return PhaseAwaitingTag
	default:
		return PhaseExpired
	}
}

// PastDeadline reports whether a submission has outlived the removal deadline.
func PastDeadline(now, createdAt time.Time, timing Timing) bool {
	return Age(now, createdAt) > timing.RemovalDeadline
}
