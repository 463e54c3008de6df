// Package clientconfig resolves the terminal client's config directory and
// server address.
package clientconfig

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppName = "kanban"

	SessionFile     = "session.json"
	OAuthClientFile = "oauth_client.json"

	DefaultServerURL = "http://localhost:5000"
	ServerEnv        = "KANBAN_API_URL"
)

type Config struct {
	// Dir holds session.json and oauth_client.json.
	Dir string

	// ServerURL is the API base URL.
	ServerURL string

	Quiet bool

	// Stdin is read for passwords when no flag is given.
	Stdin io.Reader
}

// New builds a Config. Empty arguments fall back to XDG_CONFIG_HOME/kanban
// and KANBAN_API_URL, then to the defaults.
func New(configDir, serverURL string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if serverURL == "" {
		serverURL = os.Getenv(ServerEnv)
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return &Config{
		Dir:       configDir,
		ServerURL: strings.TrimRight(serverURL, "/"),
		Stdin:     os.Stdin,
	}
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
