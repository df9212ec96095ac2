package api

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://taskman.up.railway.app/task"

	DefaultIdentifierHeader = "x-taskman-identifier"
	DefaultPasswordHeader   = "x-taskman-password"
	DefaultSourceHeader     = "x-taskman-source"
	DefaultRSNHeader        = "x-taskman-rsn"
)

// Headers names the request headers the backend reads credentials from.
type Headers struct {
	Identifier string
	Password   string
	Source     string
	RSN        string
}

// Config is the immutable endpoint and header layout a Gateway talks to.
type Config struct {
	BaseURL   string
	Headers   Headers
	UserAgent string
}

// DefaultConfig returns the production endpoint layout.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Headers: Headers{
			Identifier: DefaultIdentifierHeader,
			Password:   DefaultPasswordHeader,
			Source:     DefaultSourceHeader,
			RSN:        DefaultRSNHeader,
		},
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Headers.Identifier == "" {
		c.Headers.Identifier = def.Headers.Identifier
	}
	if c.Headers.Password == "" {
		c.Headers.Password = def.Headers.Password
	}
	if c.Headers.Source == "" {
		c.Headers.Source = def.Headers.Source
	}
	if c.Headers.RSN == "" {
		c.Headers.RSN = def.Headers.RSN
	}
	return c
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: missing host", c.BaseURL)
	}
	return nil
}

func (c Config) currentURL() string  { return c.BaseURL + "/current" }
func (c Config) generateURL() string { return c.BaseURL + "/generate" }
func (c Config) completeURL() string { return c.BaseURL + "/complete" }
func (c Config) progressURL() string { return c.BaseURL + "/progress" }

func (c Config) commandURL(rsn string) string {
	return fmt.Sprintf("%s/command/%s", c.BaseURL, url.PathEscape(rsn))
}
