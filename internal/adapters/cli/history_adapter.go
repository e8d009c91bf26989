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

// HistoryAdapter translates CLI operations to HistoryService calls.
type HistoryAdapter struct {
	service primary.HistoryService
	out     io.Writer
}

// NewHistoryAdapter creates a new HistoryAdapter with the given service.
func NewHistoryAdapter(service primary.HistoryService, out io.Writer) *HistoryAdapter {
	return &HistoryAdapter{
		service: service,
		out:     out,
	}
}

// List prints moderation history, newest first.
func (a *HistoryAdapter) List(ctx context.Context, filters primary.HistoryFilters) ([]*primary.HistoryEntry, error) {
	entries, err := a.service.ListHistory(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No moderation history.")
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSUBMISSION\tACTION\tDETAIL")
	fmt.Fprintln(w, "----\t----------\t------\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.SubmissionID,
			colorAction(e.Action),
			e.Detail,
		)
	}
	w.Flush()
	return entries, nil
}

// colorAction highlights outcomes an operator should notice.
func colorAction(action string) string {
	switch action {
	case "flaired":
		return color.New(color.FgHiGreen).Sprint(action)
	case "removed":
		return color.New(color.FgRed).Sprint(action)
	case "flair_forbidden", "remove_forbidden":
		return color.New(color.FgHiMagenta).Sprint(action)
	case "prompted", "notified", "rejected_reply":
		return color.New(color.FgCyan).Sprint(action)
	default:
		return action
	}
}
