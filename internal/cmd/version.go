package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/taskman/taskman-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Example: `  taskman version
  taskman version --check`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if check {
				var err error
				result, err = update.Check(cmd.Context(), nil, version)
				if err != nil && !errors.Is(err, update.ErrDevelopmentBuild) {
					return fmt.Errorf("update check failed: %w", err)
				}
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"version":    version,
					"go_version": runtime.Version(),
				}
				if result != nil {
					payload["latest_version"] = result.LatestVersion
					payload["update_available"] = result.UpdateAvailable
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "taskman-cli version %s\n", version)
			switch {
			case !check:
			case result == nil:
				statusf(cmd, "Update check skipped for development builds")
			case result.UpdateAvailable:
				_, _ = fmt.Fprintf(out, "Update available: %s -> %s\n", version, result.LatestVersion)
				if result.UpdateURL != "" {
					_, _ = fmt.Fprintf(out, "  %s\n", result.UpdateURL)
				}
			default:
				_, _ = fmt.Fprintln(out, "You are on the latest version.")
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")
	return cmd
}
