package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/flairbot/internal/config"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the built-in defaults to the config path so they can be edited.

Examples:
  flairbot init
  flairbot init -c /etc/flairbot.yaml --force`,
		Annotations: map[string]string{skipSetup: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(configPath)
			if err := writeDefaultConfig(path, force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Wrote default config to %s\n", path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  set community and the platform credentials")
			fmt.Fprintln(out, "  flairbot doctor")
			fmt.Fprintln(out, "  flairbot run")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	return cmd
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveConfig(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
