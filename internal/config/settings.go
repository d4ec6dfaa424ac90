package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends for the session store.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Settings is the tunable part of the configuration.
type Settings struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Focus   FocusConfig   `yaml:"focus"`
	Google  GoogleConfig  `yaml:"google"`
	AI      AIConfig      `yaml:"ai"`
}

// APIConfig holds REST backend settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"PRODEXA_API_URL"     env-default:"http://localhost:8000/api/"`
	Timeout time.Duration `yaml:"timeout"  env:"PRODEXA_API_TIMEOUT" env-default:"10s"`
}

// StorageConfig selects where the session is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"PRODEXA_STORAGE" env-default:"file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"PRODEXA_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"PRODEXA_LOG_FORMAT" env-default:"text"`
}

// FocusConfig holds focus timer durations.
type FocusConfig struct {
	Work  time.Duration `yaml:"work"  env:"PRODEXA_FOCUS_WORK"  env-default:"25m"`
	Break time.Duration `yaml:"break" env:"PRODEXA_FOCUS_BREAK" env-default:"5m"`
}

// GoogleConfig holds Google Tasks export settings.
type GoogleConfig struct {
	ClientFile string `yaml:"client_file" env:"PRODEXA_GOOGLE_CLIENT_FILE" env-default:"google_client.json"`
}

// AIConfig holds AI suggestion settings.
type AIConfig struct {
	// Demo serves built-in tips instead of calling the backend.
	Demo bool `yaml:"demo" env:"PRODEXA_AI_DEMO" env-default:"false"`
}

// LoadSettings reads settings from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// A missing file is not an error; settings then come from ENV + defaults only.
func LoadSettings(path string) (*Settings, error) {
	var s Settings

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&s); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &s, nil
}

// Validate checks settings for values the client cannot work with.
func (s *Settings) Validate() error {
	u, err := url.Parse(s.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url: invalid url %q", s.API.BaseURL)
	}
	if !strings.HasSuffix(s.API.BaseURL, "/") {
		s.API.BaseURL += "/"
	}
	if s.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout: must be positive")
	}

	switch s.Storage.Backend {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", s.Storage.Backend)
	}

	if s.Focus.Work <= 0 || s.Focus.Break <= 0 {
		return fmt.Errorf("focus: durations must be positive")
	}
	return nil
}
