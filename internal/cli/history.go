package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/flairbot/internal/ports/primary"
	"github.com/example/flairbot/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var filters primary.HistoryFilters

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show moderation history",
		Long: `Show what the bot did, newest first. Requires a sqlite store.

Examples:
  flairbot history
  flairbot history --submission t3_abc123
  flairbot history --action removed --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.HistoryAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.List(contextOf(cmd), filters)
			return err
		},
	}

	cmd.Flags().StringVar(&filters.SubmissionID, "submission", "", "only entries for this submission")
	cmd.Flags().StringVar(&filters.Action, "action", "", "only entries with this action")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 50, "maximum entries to show")

	return cmd
}
