package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/config"
	"github.com/taskman/taskman-cli/internal/validation"
)

// newTransport builds the transport the gateway uses. Tests replace it.
var newTransport = func(s config.Settings) api.Transport {
	return api.NewHTTPTransport(s.Timeout)
}

// session bundles the resolved gateway, credentials and RSN for one command.
type session struct {
	gateway  *api.Gateway
	settings config.Settings
	profile  config.Profile
	fromEnv  bool
	rsn      string
}

func (s *session) credentials() api.Credentials {
	return s.profile.Credentials()
}

// resolveSettings layers command-line flags over the settings file and env.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.LoadSettings(flags.ConfigPath)
	if err != nil {
		return config.Settings{}, &api.ConfigurationError{Reason: err.Error()}
	}
	if flagOrAliasChanged(cmd, "base-url") {
		s.BaseURL = strings.TrimSuffix(strings.TrimSpace(flags.BaseURL), "/")
	}
	if flagOrAliasChanged(cmd, "timeout") {
		s.Timeout = flags.Timeout
	}
	if flagOrAliasChanged(cmd, "rsn") {
		s.RSN = strings.TrimSpace(flags.RSN)
	}
	return s, nil
}

func newGateway(s config.Settings) (*api.Gateway, error) {
	cfg, err := s.GatewayConfig(fmt.Sprintf("taskman-cli/%s", version))
	if err != nil {
		return nil, &api.ConfigurationError{Reason: err.Error()}
	}
	return api.NewGateway(cfg, newTransport(s)), nil
}

// credentialMode controls how newSession treats the active profile.
type credentialMode int

const (
	// noCredentials skips the profile entirely.
	noCredentials credentialMode = iota
	// forwardCredentials loads the profile and sends it as stored; the
	// server decides whether it is acceptable.
	forwardCredentials
	// validCredentials also rejects incomplete credentials before dispatch.
	validCredentials
)

// newSession resolves settings and, unless mode is noCredentials, the active
// credential profile. The RSN comes from --rsn, then settings, then the
// profile.
func newSession(cmd *cobra.Command, mode credentialMode) (*session, error) {
	s, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}
	gateway, err := newGateway(s)
	if err != nil {
		return nil, err
	}
	sess := &session{gateway: gateway, settings: s, rsn: s.RSN}
	if mode == noCredentials {
		return sess, nil
	}

	profile, fromEnv, err := config.LoadCredentials(flags.Profile)
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			return nil, err
		}
		return nil, &api.ConfigurationError{Reason: err.Error()}
	}
	if mode == validCredentials && !profile.Credentials().Valid() {
		return nil, &api.ConfigurationError{Reason: api.ErrCredentialsNotConfigured}
	}
	sess.profile = profile
	sess.fromEnv = fromEnv
	if sess.rsn == "" {
		sess.rsn = profile.RSN
	}
	if sess.rsn != "" {
		if err := validation.ValidateRSN(sess.rsn); err != nil {
			return nil, err
		}
	}
	return sess, nil
}
