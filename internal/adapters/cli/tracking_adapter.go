// Package cli contains thin adapters that translate CLI operations to
// primary service calls and render the results.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/flairbot/internal/ports/primary"
)

// TrackingAdapter is a thin adapter that translates CLI operations to TrackingService calls.
// It depends only on the TrackingService interface, enabling easy testing with mocks.
type TrackingAdapter struct {
	service primary.TrackingService
	out     io.Writer
}

// NewTrackingAdapter creates a new TrackingAdapter with the given service.
func NewTrackingAdapter(service primary.TrackingService, out io.Writer) *TrackingAdapter {
	return &TrackingAdapter{
		service: service,
		out:     out,
	}
}

// List prints every in-flight submission.
func (a *TrackingAdapter) List(ctx context.Context) ([]*primary.TrackedItem, error) {
	items, err := a.service.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked submissions: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No submissions are waiting on a flair reply.")
		return items, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SUBMISSION\tPROMPT MESSAGE")
	fmt.Fprintln(w, "----------\t--------------")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\n", item.SubmissionID, item.MessageID)
	}
	w.Flush()

	fmt.Fprintf(a.out, "\n%d tracked\n", len(items))
	return items, nil
}

// Forget drops a submission from the tracking log.
func (a *TrackingAdapter) Forget(ctx context.Context, submissionID string) error {
	if err := a.service.Forget(ctx, submissionID); err != nil {
		return fmt.Errorf("failed to forget submission: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Forgot %s\n", submissionID)
	return nil
}

// Phases prints the phase of each of the newest submissions.
func (a *TrackingAdapter) Phases(ctx context.Context, limit int) ([]*primary.SubmissionPhase, error) {
	phases, err := a.service.InspectPhases(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect submissions: %w", err)
	}

	if len(phases) == 0 {
		fmt.Fprintln(a.out, "No recent submissions.")
		return phases, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SUBMISSION\tAUTHOR\tAGE\tFLAIR\tPHASE")
	fmt.Fprintln(w, "----------\t------\t---\t-----\t-----")
	for _, p := range phases {
		author := p.Author
		if author == "" {
			author = "[deleted]"
		}
		flairText := p.FlairText
		if flairText == "" {
			flairText = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.SubmissionID,
			author,
			p.Age.Truncate(time.Second),
			flairText,
			colorPhase(p.Phase),
		)
	}
	w.Flush()
	return phases, nil
}

// colorPhase renders a phase name in its status colour.
func colorPhase(phase string) string {
	switch phase {
	case "awaiting_tag":
		return color.New(color.FgYellow).Sprint(phase)
	case "in_flight":
		return color.New(color.FgCyan).Sprint(phase)
	case "resolved":
		return color.New(color.FgHiGreen).Sprint(phase)
	case "expired":
		return color.New(color.FgRed).Sprint(phase)
	default:
		return color.New(color.Faint).Sprint(phase)
	}
}
