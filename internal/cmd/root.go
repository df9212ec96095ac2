package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taskman/taskman-cli/internal/config"
	"github.com/taskman/taskman-cli/internal/debug"
	"github.com/taskman/taskman-cli/internal/iocontext"
	"github.com/taskman/taskman-cli/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output     string
	JSON       bool
	Query      string
	Compact    bool
	Debug      bool
	Quiet      bool
	Timeout    time.Duration
	BaseURL    string
	RSN        string
	Profile    string
	ConfigPath string
}

// flags holds the global command flags. It is reset at the start of every
// Execute() call; reading it outside a command's RunE sees stale values.
var flags = rootFlags{Output: defaultOutput()}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("TASKMAN_OUTPUT")); value != "" {
		return value
	}
	return "text"
}

// loadDotEnv loads <config dir>/.env when present. Variables already set in
// the environment are not overwritten, so explicit exports take precedence.
func loadDotEnv() {
	path := filepath.Join(config.ConfigDir(), ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// Runs before the flag reset so TASKMAN_OUTPUT and friends from .env apply.
	loadDotEnv()

	flags = rootFlags{Output: defaultOutput()}

	root := &cobra.Command{
		Use:   "taskman",
		Short: "CLI for the Taskman task tracker",
		Long: strings.TrimSpace(`
Fetch, generate and complete Taskman tasks, and inspect tier progress.

Credentials are stored per profile in your OS keychain (taskman auth login)
or read from TASKMAN_IDENTIFIER / TASKMAN_PASSWORD.`),
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError provides suggestions
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.Query != "" && flags.Output != "json" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--query requires --output json (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithOptions(ctx, outfmt.Options{
				Mode:    mode,
				Compact: flags.Compact,
				Query:   flags.Query,
			})

			if flagOrAliasChanged(cmd, "timeout") && flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			ioStreams := iocontext.DefaultIO()
			ioStreams.Quiet = flags.Quiet
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env TASKMAN_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "HTTP request timeout (e.g., 10s; default from config, else 30s)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "Task server base URL (env TASKMAN_BASE_URL)")
	pf.StringVar(&flags.RSN, "rsn", "", "RuneScape name sent with task requests (env TASKMAN_RSN)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env TASKMAN_PROFILE)")
	pf.StringVar(&flags.ConfigPath, "config", "", "Settings file (default <config dir>/taskman-cli/config.toml)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "jq")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "profile", "pf")

	root.AddCommand(newCurrentCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCompleteCmd())
	root.AddCommand(newProgressCmd())
	root.AddCommand(newCommandCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggest(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		cmd := root
		if targetCmd != nil {
			cmd = targetCmd
		}
		var flagNames []string
		seen := map[string]bool{}
		collect := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Hidden || seen[f.Name] {
					return
				}
				seen[f.Name] = true
				flagNames = append(flagNames, "--"+f.Name)
			})
		}
		collect(cmd.Flags())
		collect(cmd.InheritedFlags())

		helpCmd := strings.TrimSpace(cmd.CommandPath()) + " --help"
		if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a long flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}
