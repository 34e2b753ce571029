package internal

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds client configuration, loaded from an optional YAML file with
// environment and flag overrides layered on top (flags win).
type Config struct {
	BaseURL        string   `yaml:"base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	DataDir        string   `yaml:"data_dir"`
	SessionLimit   int      `yaml:"session_limit"`

	// Display limits applied to long transcripts before rendering.
	HistoryTokenLimit   int `yaml:"history_token_limit"`
	HistoryMessageLimit int `yaml:"history_message_limit"`
}

// DefaultDataDir returns the per-user data directory (~/.bitbraniac).
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bitbraniac"), nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		RequestTimeout:      Duration(30 * time.Second),
		SessionLimit:        DefaultSessionLimit,
		HistoryTokenLimit:   8000,
		HistoryMessageLimit: 200,
	}
}

// LoadConfig reads the config file at path, layering it over the defaults.
// A missing file is not an error; an unreadable or malformed one is. The
// BITBRANIAC_BASE_URL environment variable overrides the file's base URL.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			LogDebug("no config file at %s, using defaults", path)
		case err != nil:
			return cfg, &ConfigError{Path: path, Err: err}
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ConfigError{Path: path, Err: err}
			}
		}
	}

	if url := os.Getenv("BITBRANIAC_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return cfg, &ConfigError{Path: path, Err: err}
		}
		cfg.DataDir = dir
	}

	return cfg, nil
}

// CredentialsPath returns the path of the credential key-value database.
func (c Config) CredentialsPath() string {
	return filepath.Join(c.DataDir, "credentials.db")
}

// CachePath returns the offline session cache directory.
func (c Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache")
}
