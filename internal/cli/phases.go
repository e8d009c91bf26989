package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/flairbot/internal/wire"
)

// PhasesCmd returns the phases command
func PhasesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "phases",
		Short: "Classify the newest submissions",
		Long: `Fetch the newest submissions and show which phase each is in:
too_young, awaiting_tag, in_flight, resolved or expired. Makes no changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TrackingAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.Phases(contextOf(cmd), limit)
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "number of submissions to inspect")

	return cmd
}
