package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskman/taskman-cli/internal/iocontext"
	"github.com/taskman/taskman-cli/internal/outfmt"
	"github.com/taskman/taskman-cli/internal/validation"
)

func newCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "command <rsn>",
		Short: "Show the public chat-command summary for a player",
		Long:  "Look up the task and tier progress a player shares through the in-game chat command. No credentials are needed.",
		Example: `  taskman command Zezima
  taskman command "Lynx Titan" --json`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			rsn := strings.TrimSpace(args[0])
			if err := validation.ValidateRSN(rsn); err != nil {
				return err
			}

			sess, err := newSession(cmd, noCredentials)
			if err != nil {
				return err
			}

			data, err := sess.gateway.ChatCommandData(cmd.Context(), rsn)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, data)
			}

			s := outfmt.NewSheet(iocontext.GetIO(cmd.Context()).Out)
			s.Field("Player", rsn)
			if data.Task != nil {
				s.Field("Task", data.Task.Name)
			}
			s.Field("Tier", data.Tier)
			s.Fieldf("Progress", "%d%%", data.ProgressPercentage)
			return s.Flush()
		}),
	}
}
