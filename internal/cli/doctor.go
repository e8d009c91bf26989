package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/flairbot/internal/adapters/filesystem"
	"github.com/example/flairbot/internal/adapters/sqlite"
	"github.com/example/flairbot/internal/config"
	"github.com/example/flairbot/internal/db"
	"github.com/example/flairbot/internal/ports/secondary"
)

// Check statuses
const (
	statusOK   = "✓"
	statusWarn = "⚠"
	statusFail = "✗"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Summary string // Shown next to the status
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for configuration validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate flairbot configuration and storage",
		Long: `Health check for a flairbot deployment.

Validates:
- The config file loads and passes validation
- Platform credentials are present
- The tracking store opens and its schema is current

Examples:
  flairbot doctor              # Run full health check
  flairbot doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		Annotations: map[string]string{skipSetup: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(configPath)
			loaded, err := config.LoadConfig(path)

			results := []CheckResult{checkConfig(path, err)}
			if loaded != nil {
				results = append(results, checkCredentials(loaded))
				results = append(results, checkStore(contextOf(cmd), loaded.Store))
			}

			if !quiet {
				printChecks(cmd.OutOrStdout(), results)
			}

			if hasFailures(results) {
				return fmt.Errorf("configuration validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func printChecks(out io.Writer, results []CheckResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status")
	fmt.Fprintln(out, "─────────────────────────")
	for _, r := range results {
		if r.Summary != "" {
			fmt.Fprintf(out, "%-18s %s  %s\n", r.Name, r.Status, r.Summary)
			continue
		}
		fmt.Fprintf(out, "%-18s %s\n", r.Name, r.Status)
	}
	fmt.Fprintln(out)

	hasDetails := false
	for _, r := range results {
		if r.Status != statusOK && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasFailures(results) {
		fmt.Fprintln(out, "\n⚠ Issues found. Fix the config and run 'flairbot doctor' again.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}

func hasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == statusFail {
			return true
		}
	}
	return false
}

func checkConfig(path string, loadErr error) CheckResult {
	if loadErr != nil {
		return CheckResult{Name: "Config", Status: statusFail, Details: "  " + loadErr.Error()}
	}
	return CheckResult{Name: "Config", Status: statusOK, Summary: path}
}

func checkCredentials(cfg *config.Config) CheckResult {
	if err := cfg.ValidateCredentials(); err != nil {
		return CheckResult{
			Name:    "Credentials",
			Status:  statusFail,
			Details: "  " + err.Error() + "\n  Set them in the config or via FLAIRBOT_USERNAME, FLAIRBOT_PASSWORD, FLAIRBOT_CLIENT_ID",
		}
	}
	return CheckResult{Name: "Credentials", Status: statusOK}
}

// checkStore opens the configured store without modifying the tracking log.
func checkStore(ctx context.Context, store config.StoreConfig) CheckResult {
	if store.Driver == config.DriverJSON {
		path, err := db.ExpandPath(store.Path)
		if err != nil {
			return CheckResult{Name: "Store", Status: statusFail, Details: "  " + err.Error()}
		}
		file := filesystem.NewSnapshotFile(path)
		snapshot, err := file.LoadSnapshot(ctx)
		switch {
		case errors.Is(err, secondary.ErrNoSnapshot):
			return CheckResult{Name: "Store", Status: statusWarn, Details: "  " + file.Path() + " does not exist yet, it is created on the first save"}
		case err != nil:
			return CheckResult{Name: "Store", Status: statusFail, Details: "  " + err.Error()}
		}
		return CheckResult{Name: "Store", Status: statusOK, Summary: fmt.Sprintf("%s, %d tracked", file.Path(), len(snapshot))}
	}

	conn, err := db.Open(store.Driver, store.Path)
	if err != nil {
		return CheckResult{Name: "Store", Status: statusFail, Details: "  " + err.Error()}
	}
	defer conn.Close()

	current, err := db.CurrentVersion(conn)
	if err != nil {
		return CheckResult{Name: "Store", Status: statusFail, Details: "  " + err.Error()}
	}
	if current != db.LatestVersion() {
		return CheckResult{
			Name:    "Store",
			Status:  statusWarn,
			Details: fmt.Sprintf("  schema version %d, latest is %d", current, db.LatestVersion()),
		}
	}

	savedAt, err := sqlite.NewSnapshotRepository(conn).SavedAt(ctx)
	if err != nil {
		return CheckResult{Name: "Store", Status: statusFail, Details: "  " + err.Error()}
	}
	if savedAt.IsZero() {
		return CheckResult{Name: "Store", Status: statusOK, Summary: "never saved"}
	}
	return CheckResult{Name: "Store", Status: statusOK, Summary: "last saved " + savedAt.Local().Format(time.DateTime)}
}
