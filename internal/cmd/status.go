package cmd

import (
	"errors"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/config"
	"github.com/taskman/taskman-cli/internal/iocontext"
	"github.com/taskman/taskman-cli/internal/outfmt"
)

// StatusInfo holds configuration, authentication and live task status.
type StatusInfo struct {
	Authenticated bool                 `json:"authenticated"`
	Profile       string               `json:"profile,omitempty"`
	ConfigSource  string               `json:"config_source,omitempty"`
	Identifier    string               `json:"identifier,omitempty"`
	Source        api.Source           `json:"source,omitempty"`
	RSN           string               `json:"rsn,omitempty"`
	BaseURL       string               `json:"base_url"`
	Task          *taskOutput          `json:"task,omitempty"`
	Progress      *api.AccountProgress `json:"progress,omitempty"`
	CLIVersion    string               `json:"cli_version"`
	GoVersion     string               `json:"go_version"`
	Platform      string               `json:"platform"`
}

func newStatusCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show configuration, current task and progress",
		Long: `Display the active profile and server, then fetch the current task and
tier progress in parallel. Use --offline to skip the network calls.`,
		Example: `  taskman status
  taskman status --offline --json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			info := StatusInfo{
				CLIVersion: version,
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			}

			sess, err := newSession(cmd, validCredentials)
			if err != nil {
				if !errors.Is(err, config.ErrNotConfigured) && !api.IsConfigurationError(err) {
					return err
				}
				settings, settingsErr := resolveSettings(cmd)
				if settingsErr != nil {
					return settingsErr
				}
				info.BaseURL = settings.BaseURL
				info.RSN = settings.RSN
				return renderStatus(cmd, info)
			}

			info.Authenticated = true
			info.BaseURL = sess.settings.BaseURL
			info.RSN = sess.rsn
			info.Identifier = sess.profile.Identifier
			info.Source = sess.profile.Source
			info.ConfigSource = "keychain"
			if sess.fromEnv {
				info.ConfigSource = "environment"
			} else if profile, err := activeProfileName(); err == nil {
				info.Profile = profile
			}

			if !offline {
				if err := fetchStatus(cmd, sess, &info); err != nil {
					return err
				}
			}
			return renderStatus(cmd, info)
		}),
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip fetching the current task and progress")
	return cmd
}

func activeProfileName() (string, error) {
	if flags.Profile != "" {
		return flags.Profile, nil
	}
	return config.CurrentProfile()
}

// fetchStatus loads the current task and progress concurrently.
func fetchStatus(cmd *cobra.Command, sess *session, info *StatusInfo) error {
	g, ctx := errgroup.WithContext(cmd.Context())
	creds := sess.credentials()

	var task *api.Task
	var progress *api.AccountProgress
	g.Go(func() error {
		var err error
		task, err = api.Await(ctx, func(done api.Handler[*api.Task]) error {
			return sess.gateway.CurrentTask(ctx, creds, sess.rsn, done)
		})
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = api.Await(ctx, func(done api.Handler[*api.AccountProgress]) error {
			return sess.gateway.AccountProgress(ctx, creds, sess.rsn, done)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := newTaskOutput(task)
	info.Task = &out
	info.Progress = progress
	return nil
}

func renderStatus(cmd *cobra.Command, info StatusInfo) error {
	if isJSON(cmd) {
		return printJSON(cmd, info)
	}

	s := outfmt.NewSheet(iocontext.GetIO(cmd.Context()).Out)
	s.Title("TASKMAN STATUS")
	if info.Authenticated {
		s.Field("Authenticated", "yes")
		s.Field("Identifier", info.Identifier)
		s.Field("Source", string(info.Source))
		s.Field("Config Source", info.ConfigSource)
		s.Field("Profile", info.Profile)
	} else {
		s.Field("Authenticated", "no")
		s.Field("Hint", "Run 'taskman auth login' to authenticate")
	}
	s.Field("Server", info.BaseURL)
	s.Field("RSN", info.RSN)
	if info.Task != nil {
		s.Field("Current Task", info.Task.Name)
	}
	if info.Progress != nil && info.Progress.CurrentTier != "" {
		tier := info.Progress.Tiers[info.Progress.CurrentTier]
		s.Fieldf("Current Tier", "%s (%d/%d, %d%%)", info.Progress.CurrentTier, tier.Completed, tier.Total, tier.Percentage())
	}
	s.Gap()
	s.Field("CLI Version", info.CLIVersion)
	s.Field("Go Version", info.GoVersion)
	s.Field("Platform", info.Platform)
	return s.Flush()
}
