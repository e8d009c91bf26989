// Package cli contains the cobra commands of the flairbot binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/flairbot/internal/config"
	"github.com/example/flairbot/internal/version"
	"github.com/example/flairbot/internal/wire"
)

// skipSetup marks commands that run without a loaded config.
const skipSetup = "flairbot.skip-setup"

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd returns the flairbot root command with every subcommand attached.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "flairbot",
		Short:   "Enforce post flair on a community",
		Version: version.String(),
		Long: `flairbot watches a community for new submissions without flair.

Authors of unflaired posts get a private message asking them to flair the
post, and may reply with the flair they want. Posts still unflaired when
the deadline passes are removed and the author is told why.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = wire.Close()
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(TrackedCmd())
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(PhasesCmd())
	rootCmd.AddCommand(DoctorCmd())
	rootCmd.AddCommand(InitCmd())

	return rootCmd
}

// setup loads the config, builds the logger and configures wiring.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	var err error
	cfg, err = config.LoadConfig(config.ResolvePath(configPath))
	if err != nil {
		return err
	}

	logger, err = newLogger(cfg.Log, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	wire.Configure(cfg, logger)
	return nil
}

// newLogger builds the zap logger from the log settings.
func newLogger(settings config.LogConfig, verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if settings.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if settings.Level != "" {
		parsed, err := zapcore.ParseLevel(settings.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", settings.Level, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
