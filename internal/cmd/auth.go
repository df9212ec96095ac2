package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/config"
	"github.com/taskman/taskman-cli/internal/iocontext"
	"github.com/taskman/taskman-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage task credentials",
		Long:    "Configure and manage Taskman credentials stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		identifier    string
		password      string
		passwordStdin bool
		source        string
		envFile       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to the keychain",
		Long: strings.TrimSpace(`
Save Taskman credentials securely to your OS keychain.

You'll need:
- Identifier: the spreadsheet id or website username your tasks are tracked under
- Password: the password set for that identifier

Optional:
- Source: SPREADSHEET or WEBSITE (default WEBSITE)
- RSN: the character name sent with every task request
- Profile: save several accounts and switch between them
`),
		Example: strings.TrimSpace(`
  # Save website credentials
  taskman auth login --identifier me --password-stdin < pw.txt

  # Save a spreadsheet profile with a default RSN
  taskman auth login --identifier 1AbC --password hunter2 --source spreadsheet --rsn Zezima --profile sheet

  # Load TASKMAN_* values from a .env file
  taskman auth login --env-file .env
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if passwordStdin && password != "" {
				return fmt.Errorf("--password conflicts with --password-stdin; set only one")
			}

			rsn := flags.RSN
			profile := flags.Profile

			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				applyAuthEnvFileRuntimeVars(envVars)

				if identifier == "" {
					identifier = strings.TrimSpace(envVars["TASKMAN_IDENTIFIER"])
				}
				if password == "" && !passwordStdin {
					password = envVars["TASKMAN_PASSWORD"]
				}
				if !cmd.Flags().Changed("source") {
					if v := strings.TrimSpace(envVars["TASKMAN_SOURCE"]); v != "" {
						source = v
					}
				}
				if rsn == "" {
					rsn = strings.TrimSpace(envVars["TASKMAN_RSN"])
				}
				if !flagOrAliasChanged(cmd, "profile") {
					if v := strings.TrimSpace(envVars["TASKMAN_PROFILE"]); v != "" {
						profile = v
					}
				}
			}

			if passwordStdin {
				line, err := readPasswordLine(cmd)
				if err != nil {
					return err
				}
				password = line
			}

			src, err := parseSourceFlag(source)
			if err != nil {
				return err
			}

			p := config.Profile{
				Identifier: strings.TrimSpace(identifier),
				Password:   password,
				Source:     src,
				RSN:        strings.TrimSpace(rsn),
			}
			if !p.Credentials().Valid() {
				return fmt.Errorf("--identifier and --password are required")
			}
			if err := validation.ValidateIdentifier(p.Identifier); err != nil {
				return err
			}
			if p.RSN != "" {
				if err := validation.ValidateRSN(p.RSN); err != nil {
					return err
				}
			}

			if profile == "" {
				profile = "default"
			}
			if err := config.SaveProfile(profile, p); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"saved":      true,
					"profile":    profile,
					"identifier": p.Identifier,
					"source":     p.Source,
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Credentials saved successfully!")
			_, _ = fmt.Fprintf(out, "  Identifier: %s\n", p.Identifier)
			_, _ = fmt.Fprintf(out, "  Source: %s\n", p.Source)
			if p.RSN != "" {
				_, _ = fmt.Fprintf(out, "  RSN: %s\n", p.RSN)
			}
			if profile != "default" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "Spreadsheet id or website username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&source, "source", string(api.SourceWebsite), "Credential source: SPREADSHEET|WEBSITE")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load TASKMAN_* (and optional TASKMAN_KEYRING_*) values from a .env file")
	flagAlias(cmd.Flags(), "identifier", "id")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

// parseSourceFlag parses a --source value and suggests the nearest tag on typos.
func parseSourceFlag(value string) (api.Source, error) {
	src, err := api.ParseSource(value)
	if err == nil {
		return src, nil
	}
	names := make([]string, len(api.Sources))
	for i, s := range api.Sources {
		names[i] = string(s)
	}
	if suggestion := suggest(value, names); suggestion != "" {
		return "", fmt.Errorf("%w\n\nDid you mean %q?", err, suggestion)
	}
	return "", err
}

func readPasswordLine(cmd *cobra.Command) (string, error) {
	in := iocontext.GetIO(cmd.Context()).In
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}
	return envVars, nil
}

// applyAuthEnvFileRuntimeVars copies keyring settings from --env-file into
// the process environment when they are not already exported.
func applyAuthEnvFileRuntimeVars(envVars map[string]string) {
	keys := []string{
		"TASKMAN_KEYRING_BACKEND",
		"TASKMAN_KEYRING_PASSWORD",
		"TASKMAN_CREDENTIALS_DIR",
	}
	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if value := strings.TrimSpace(envVars[key]); value != "" {
			_ = os.Setenv(key, value)
		}
	}
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Long:  "Display the active credentials (password masked) and the known profiles.",
		Example: strings.TrimSpace(`
  taskman auth status
  taskman auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			p, fromEnv, err := config.LoadCredentials(flags.Profile)
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'taskman auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'taskman auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			origin := "keychain"
			var profile string
			var profiles []string
			if fromEnv {
				origin = "env"
			} else {
				if current, err := activeProfileName(); err == nil {
					profile = current
				}
				profiles, _ = config.ListProfiles()
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"identifier":    p.Identifier,
					"password":      maskSecret(p.Password),
					"source":        p.Source,
					"origin":        origin,
				}
				if p.RSN != "" {
					payload["rsn"] = p.RSN
				}
				if profile != "" {
					payload["profile"] = profile
				}
				if len(profiles) > 0 {
					payload["profiles"] = profiles
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  Identifier: %s\n", p.Identifier)
			_, _ = fmt.Fprintf(out, "  Password: %s\n", maskSecret(p.Password))
			_, _ = fmt.Fprintf(out, "  Source: %s\n", p.Source)
			if p.RSN != "" {
				_, _ = fmt.Fprintf(out, "  RSN: %s\n", p.RSN)
			}
			if profile != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			if len(profiles) > 1 {
				_, _ = fmt.Fprintf(out, "  Profiles: %s\n", strings.Join(profiles, ", "))
			}
			if fromEnv {
				_, _ = fmt.Fprintln(out, "  Origin: env")
			}
			return nil
		}),
	}
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from the keychain",
		Long:  "Delete a stored credential profile from your OS keychain.",
		Example: strings.TrimSpace(`
  taskman auth logout
  taskman auth logout --profile sheet
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile, err := activeProfileName()
			if err != nil {
				return fmt.Errorf("failed to resolve current profile: %w", err)
			}

			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed successfully.\n", profile)
			return nil
		}),
	}
}
