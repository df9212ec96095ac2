package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/iocontext"
	"github.com/taskman/taskman-cli/internal/outfmt"
)

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "progress",
		Aliases: []string{"pr"},
		Short:   "Show completion progress per task tier",
		Example: `  # Table of tiers
  taskman progress

  # Tiers that are not finished yet
  taskman progress -q '.progress | with_entries(select(.value.completed < .value.total)) | keys'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(cmd, validCredentials)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			progress, err := api.Await(ctx, func(done api.Handler[*api.AccountProgress]) error {
				return sess.gateway.AccountProgress(ctx, sess.credentials(), sess.rsn, done)
			})
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, progress)
			}
			return renderProgress(cmd, progress)
		}),
	}
}

func renderProgress(cmd *cobra.Command, progress *api.AccountProgress) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	if len(progress.Tiers) == 0 {
		_, _ = fmt.Fprintln(ioStreams.ErrOut, "No tier progress recorded yet.")
		return nil
	}

	tiers := make([]string, 0, len(progress.Tiers))
	for name := range progress.Tiers {
		tiers = append(tiers, name)
	}
	sort.Strings(tiers)

	s := outfmt.NewSheet(ioStreams.Out)
	s.Columns("", "TIER", "COMPLETED", "TOTAL", "PERCENT")
	for _, name := range tiers {
		tier := progress.Tiers[name]
		marker := ""
		if name == progress.CurrentTier {
			marker = "*"
		}
		s.Columns(marker, name, fmt.Sprint(tier.Completed), fmt.Sprint(tier.Total), fmt.Sprintf("%d%%", tier.Percentage()))
	}
	return s.Flush()
}
