package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/flairbot/internal/wire"
)

// TrackedCmd returns the tracked command
func TrackedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracked",
		Short: "Inspect the tracking log",
		Long:  "Inspect the submissions that were prompted and are waiting on a flair reply.",
	}

	cmd.AddCommand(trackedListCmd())
	cmd.AddCommand(trackedForgetCmd())

	return cmd
}

func trackedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TrackingAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.List(contextOf(cmd))
			return err
		},
	}
}

func trackedForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget [submission-id]",
		Short: "Stop tracking a submission",
		Long: `Stop tracking a submission. The bot will no longer act on replies to
its prompt or remove it at the deadline. A running daemon picks the change
up at the start of its next cycle.

Examples:
  flairbot tracked forget t3_abc123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TrackingAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Forget(contextOf(cmd), args[0])
		},
	}
}
