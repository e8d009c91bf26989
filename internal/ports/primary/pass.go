// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI drives the application.
package primary

import "context"

// Pass names.
const (
	PassScan      = "scan"
	PassReplies   = "replies"
	PassReconcile = "reconcile"
)

// Pass is one reconciliation pass over the platform.
type Pass interface {
	// Name returns the pass name used in logs.
	Name() string

	// Run executes the pass once.
	Run(ctx context.Context) (*PassReport, error)
}

// PassReport summarizes what a pass did.
type PassReport struct {
	Pass      string
	Seen      int // submissions or messages inspected
	Prompted  int
	Flaired   int
	Rejected  int // replies without a valid flair
	Forbidden int // actions denied for lack of privilege
	Untracked int
	Removed   int
}

// Orchestrator defines the primary port for running the enforcement loop.
type Orchestrator interface {
	// Run loops over cycles until ctx is done.
	Run(ctx context.Context) error

	// RunOnce executes a single cycle of all passes, loading the tracking
	// log on first use.
	RunOnce(ctx context.Context) []*PassReport
}
