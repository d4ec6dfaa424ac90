// Package config handles the XDG configuration directory, file paths, and settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "prodexa"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yaml"

	// SessionFile is the file-backed session storage filename.
	SessionFile = "session.json"

	// SessionDBFile is the SQLite-backed session storage filename.
	SessionDBFile = "session.db"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from config.yaml and the environment.
	Settings Settings
}

// New creates a new Config with the default or specified config directory
// and loads its settings.
// If configDir is empty, uses XDG_CONFIG_HOME/prodexa or $HOME/.config/prodexa.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	settings, err := LoadSettings(filepath.Join(dir, SettingsFile))
	if err != nil {
		return nil, err
	}
	return &Config{Dir: dir, Settings: *settings}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path of the session storage for the configured backend.
func (c *Config) SessionPath() string {
	if c.Settings.Storage.Backend == StorageSQLite {
		return filepath.Join(c.Dir, SessionDBFile)
	}
	return filepath.Join(c.Dir, SessionFile)
}

// GoogleClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) GoogleClientPath() string {
	if filepath.IsAbs(c.Settings.Google.ClientFile) {
		return c.Settings.Google.ClientFile
	}
	return filepath.Join(c.Dir, c.Settings.Google.ClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token file.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return nil
}

// HasGoogleClient checks if the Google OAuth client credentials file exists.
func (c *Config) HasGoogleClient() bool {
	_, err := os.Stat(c.GoogleClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}

// RemoveGoogleToken deletes the Google token file.
func (c *Config) RemoveGoogleToken() error {
	return os.Remove(c.GoogleTokenPath())
}
