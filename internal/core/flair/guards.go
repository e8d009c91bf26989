package flair

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// PromptContext provides context for the prompt guard.
type PromptContext struct {
	SubmissionID string
	Author       string
	Phase        Phase
}

// CanPrompt evaluates whether an author should be prompted for a submission.
// Rules:
// - Submission must be in the awaiting-tag phase
// - Author must be resolvable
func CanPrompt(ctx PromptContext) GuardResult {
	if ctx.Phase != PhaseAwaitingTag {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("submission %s is %s", ctx.SubmissionID, ctx.Phase),
		}
	}

	if ctx.Author == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("submission %s has no resolvable author", ctx.SubmissionID),
		}
	}

	return GuardResult{Allowed: true}
}
