// Package effects defines moderation side effects as data structures.
// This is the foundation of the Functional Core / Imperative Shell pattern:
// planners in core describe what should happen, the app layer executes it.
package effects

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// ForbiddenPolicy tells the executor what to do when the platform rejects
// an effect for lack of moderation privilege.
type ForbiddenPolicy int

const (
	// HaltOnForbidden stops the plan; remaining effects are skipped.
	HaltOnForbidden ForbiddenPolicy = iota
	// ContinueOnForbidden logs the denial and runs the remaining effects.
	ContinueOnForbidden
)

// MessageEffect sends a new private message.
type MessageEffect struct {
	SubmissionID string // submission the message is about, for the audit trail
	To           string
	Subject      string
	Body         string
}

func (e MessageEffect) EffectType() string { return "message" }

// ReplyEffect replies within an existing private message thread.
type ReplyEffect struct {
	SubmissionID string
	MessageID    string
	Body         string
}

func (e ReplyEffect) EffectType() string { return "reply" }

// FlairEffect applies a moderator flair to a submission.
type FlairEffect struct {
	SubmissionID string
	Text         string
	CSSClass     string
	OnForbidden  ForbiddenPolicy
}

func (e FlairEffect) EffectType() string { return "flair" }

// RemoveEffect removes a submission from the community.
type RemoveEffect struct {
	SubmissionID string
	OnForbidden  ForbiddenPolicy
}

func (e RemoveEffect) EffectType() string { return "remove" }

// UntrackEffect drops a submission from the tracking log.
type UntrackEffect struct {
	SubmissionID string
	Reason       UntrackReason
}

func (e UntrackEffect) EffectType() string { return "untrack" }

// UntrackReason explains why a submission left the tracking log.
type UntrackReason string

const (
	UntrackFlairApplied      UntrackReason = "flair_applied"
	UntrackFlairedExternally UntrackReason = "flaired_externally"
	UntrackVanished          UntrackReason = "vanished"
	UntrackTimedOut          UntrackReason = "timed_out"
)

// AuditAction names a moderation outcome recorded in the audit log.
type AuditAction string

const (
	AuditPrompted        AuditAction = "prompted"
	AuditNotified        AuditAction = "notified"
	AuditRejectedReply   AuditAction = "rejected_reply"
	AuditFlaired         AuditAction = "flaired"
	AuditFlairForbidden  AuditAction = "flair_forbidden"
	AuditRemoved         AuditAction = "removed"
	AuditRemoveForbidden AuditAction = "remove_forbidden"
	AuditUntracked       AuditAction = "untracked"
)
