package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/taskman/taskman-cli/internal/api"
)

const settingsFileName = "config.toml"

// Settings configures the gateway. Values are layered: defaults, then the
// TOML file, then TASKMAN_* environment variables, then command-line flags.
type Settings struct {
	BaseURL          string        `env:"TASKMAN_BASE_URL"`
	Timeout          time.Duration `env:"TASKMAN_TIMEOUT"`
	RSN              string        `env:"TASKMAN_RSN"`
	IdentifierHeader string        `env:"TASKMAN_IDENTIFIER_HEADER"`
	PasswordHeader   string        `env:"TASKMAN_PASSWORD_HEADER"`
	SourceHeader     string        `env:"TASKMAN_SOURCE_HEADER"`
	RSNHeader        string        `env:"TASKMAN_RSN_HEADER"`
}

// DefaultSettings returns the production settings.
func DefaultSettings() Settings {
	cfg := api.DefaultConfig()
	return Settings{
		BaseURL:          cfg.BaseURL,
		Timeout:          api.DefaultTimeout,
		IdentifierHeader: cfg.Headers.Identifier,
		PasswordHeader:   cfg.Headers.Password,
		SourceHeader:     cfg.Headers.Source,
		RSNHeader:        cfg.Headers.RSN,
	}
}

// DefaultSettingsPath returns the settings file location.
func DefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), settingsFileName)
}

// LoadSettings reads path (DefaultSettingsPath when empty) and applies
// environment overrides. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultSettingsPath()
	}

	s := DefaultSettings()
	if err := s.mergeFile(path); err != nil {
		return Settings{}, err
	}
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	s.BaseURL = strings.TrimSuffix(strings.TrimSpace(s.BaseURL), "/")
	if s.Timeout < 0 {
		return Settings{}, fmt.Errorf("timeout must be >= 0")
	}
	return s, nil
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL string `toml:"base_url"`
		Timeout string `toml:"timeout"`
		RSN     string `toml:"rsn"`
		Headers struct {
			Identifier string `toml:"identifier"`
			Password   string `toml:"password"`
			Source     string `toml:"source"`
			RSN        string `toml:"rsn"`
		} `toml:"headers"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIfPresent(&s.BaseURL, raw.BaseURL)
	setIfPresent(&s.RSN, raw.RSN)
	setIfPresent(&s.IdentifierHeader, raw.Headers.Identifier)
	setIfPresent(&s.PasswordHeader, raw.Headers.Password)
	setIfPresent(&s.SourceHeader, raw.Headers.Source)
	setIfPresent(&s.RSNHeader, raw.Headers.RSN)
	if timeout := strings.TrimSpace(raw.Timeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("parse config %s: invalid timeout %q: %w", path, timeout, err)
		}
		s.Timeout = d
	}
	return nil
}

func setIfPresent(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

// GatewayConfig converts the settings into the gateway's endpoint layout.
func (s Settings) GatewayConfig(userAgent string) (api.Config, error) {
	cfg := api.Config{
		BaseURL: s.BaseURL,
		Headers: api.Headers{
			Identifier: s.IdentifierHeader,
			Password:   s.PasswordHeader,
			Source:     s.SourceHeader,
			RSN:        s.RSNHeader,
		},
		UserAgent: userAgent,
	}
	if err := cfg.Validate(); err != nil {
		return api.Config{}, err
	}
	return cfg, nil
}
