package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/flairbot/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the flair enforcement loop",
		Long: `Run the scan, reply and timeout passes in a loop until interrupted.

Examples:
  flairbot run                  # loop until SIGINT/SIGTERM
  flairbot run --once           # one cycle, then print a summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := wire.Orchestrator()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				reports := orchestrator.RunOnce(ctx)
				out := cmd.OutOrStdout()
				for _, r := range reports {
					fmt.Fprintf(out, "%-10s seen=%d prompted=%d flaired=%d rejected=%d removed=%d untracked=%d forbidden=%d\n",
						r.Pass, r.Seen, r.Prompted, r.Flaired, r.Rejected, r.Removed, r.Untracked, r.Forbidden)
				}
				return nil
			}

			logger.Info("starting enforcement loop",
				zap.String("community", cfg.Community),
				zap.Duration("prompt_delay", cfg.TimingPolicy().PromptDelay),
				zap.Duration("removal_deadline", cfg.TimingPolicy().RemovalDeadline),
				zap.String("store", cfg.Store.Driver),
			)
			return orchestrator.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")

	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
