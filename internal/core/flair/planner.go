package flair

import (
	"time"

	"github.com/example/flairbot/internal/core/effects"
)

// Notice is a rendered private message.
type Notice struct {
	Subject string
	Body    string
}

// ReconcileOutcome classifies what happened to a tracked submission.
type ReconcileOutcome string

const (
	OutcomeVanished ReconcileOutcome = "vanished"
	OutcomeFlaired  ReconcileOutcome = "flaired"
	OutcomeExpired  ReconcileOutcome = "expired"
	OutcomeWaiting  ReconcileOutcome = "waiting"
)

// ReconcilePlanInput contains pre-fetched data for one tracked submission.
type ReconcilePlanInput struct {
	SubmissionID string
	Found        bool   // returned by the batch lookup
	Author       string // empty when deleted or suspended
	Flaired      bool
	CreatedAt    time.Time
	Now          time.Time
	Timing       Timing
	RemovalNote  Notice
}

// ReconcilePlan represents the planned effects for a tracked submission.
type ReconcilePlan struct {
	SubmissionID string
	Outcome      ReconcileOutcome
	Effects      []effects.Effect
}

// GeneratePlanReconcile decides how a tracked submission is resolved.
// This is a pure function - all input data must be pre-fetched.
//
// Precedence: vanished, then flaired, then past deadline, else keep waiting.
func GeneratePlanReconcile(input ReconcilePlanInput) ReconcilePlan {
	plan := ReconcilePlan{SubmissionID: input.SubmissionID}

	switch {
	case !input.Found || input.Author == "":
		plan.Outcome = OutcomeVanished
		plan.Effects = []effects.Effect{
			effects.UntrackEffect{SubmissionID: input.SubmissionID, Reason: effects.UntrackVanished},
		}

	case input.Flaired:
		plan.Outcome = OutcomeFlaired
		plan.Effects = []effects.Effect{
			effects.UntrackEffect{SubmissionID: input.SubmissionID, Reason: effects.UntrackFlairedExternally},
		}

	case PastDeadline(input.Now, input.CreatedAt, input.Timing):
		// Untracked whatever the removal outcome: retrying a denied removal
		// every cycle cannot succeed.
		plan.Outcome = OutcomeExpired
		plan.Effects = []effects.Effect{
			effects.RemoveEffect{SubmissionID: input.SubmissionID, OnForbidden: effects.ContinueOnForbidden},
			effects.MessageEffect{SubmissionID: input.SubmissionID, To: input.Author, Subject: input.RemovalNote.Subject, Body: input.RemovalNote.Body},
			effects.UntrackEffect{SubmissionID: input.SubmissionID, Reason: effects.UntrackTimedOut},
		}

	default:
		plan.Outcome = OutcomeWaiting
	}

	return plan
}

// ReplyPlanInput contains the data needed to answer a correlated reply.
type ReplyPlanInput struct {
	SubmissionID string
	MessageID    string
	Body         string
	Rejection    string // reply sent when no flair keyword is found
}

// ReplyPlan represents the planned effects for a correlated reply.
type ReplyPlan struct {
	Matched bool
	Flair   Flair
	Effects []effects.Effect
}

// GeneratePlanReply parses a reply for a flair keyword and plans the response.
// A denied flair keeps the submission tracked so the timeout still applies.
func GeneratePlanReply(catalog *Catalog, input ReplyPlanInput) ReplyPlan {
	match, ok := catalog.Match(input.Body)
	if !ok {
		return ReplyPlan{
			Effects: []effects.Effect{
				effects.ReplyEffect{SubmissionID: input.SubmissionID, MessageID: input.MessageID, Body: input.Rejection},
			},
		}
	}

	return ReplyPlan{
		Matched: true,
		Flair:   match,
		Effects: []effects.Effect{
			effects.FlairEffect{
				SubmissionID: input.SubmissionID,
				Text:         TitleCase(match.Name),
				CSSClass:     match.CSSClass,
				OnForbidden:  effects.HaltOnForbidden,
			},
			effects.UntrackEffect{SubmissionID: input.SubmissionID, Reason: effects.UntrackFlairApplied},
		},
	}
}
