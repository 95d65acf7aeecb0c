// Package config manages Bodypress's user configuration
// (~/.bodypress/config.toml) and data-directory layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user-wide settings.
type Config struct {
	Mode     string         `toml:"mode"` // "remote" or "local"
	Remote   RemoteConfig   `toml:"remote"`
	Local    LocalConfig    `toml:"local"`
	Context  ContextConfig  `toml:"context"`
	Capture  CaptureConfig  `toml:"capture"`
	Generate GenerateConfig `toml:"generate"`
}

// RemoteConfig points at the remote OpenAI-compatible service.
type RemoteConfig struct {
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// LocalConfig points at the on-device model runtime.
type LocalConfig struct {
	Backend    string `toml:"backend"` // runtime family, e.g. "ollama"
	Model      string `toml:"model"`
	RuntimeURL string `toml:"runtime_url"`
}

// ContextConfig controls the grounding window.
type ContextConfig struct {
	Days int `toml:"days"`
}

// CaptureConfig controls the background capture schedule.
type CaptureConfig struct {
	IntervalMinutes int  `toml:"interval_minutes"`
	DayStartHour    int  `toml:"day_start_hour"`
	DayEndHour      int  `toml:"day_end_hour"`
	Notify          bool `toml:"notify"`
}

// GenerateConfig controls automatic entry generation.
type GenerateConfig struct {
	Hour     int  `toml:"hour"` // local hour at which yesterday's entry is written
	Insights bool `toml:"insights"`
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Mode: "remote",
		Remote: RemoteConfig{
			BaseURL:     "https://api.openai.com",
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Local: LocalConfig{
			Backend:    "ollama",
			Model:      "llama3.2",
			RuntimeURL: "http://localhost:11434",
		},
		Context: ContextConfig{
			Days: 7,
		},
		Capture: CaptureConfig{
			IntervalMinutes: 120,
			DayStartHour:    7,
			DayEndHour:      22,
			Notify:          true,
		},
		Generate: GenerateConfig{
			Hour:     6,
			Insights: false,
		},
	}
}

// DataDir returns the Bodypress data directory (~/.bodypress), honouring
// the BODYPRESS_HOME override used by tests and daemons.
func DataDir() (string, error) {
	if v := os.Getenv("BODYPRESS_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bodypress"), nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DBPath returns the path to the SQLite database.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bodypress.db"), nil
}

// SpoolDir returns the directory watched for dropped capture files.
func SpoolDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "spool"), nil
}

// Load loads the config, applying defaults for any missing values.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, nil // Return defaults if we can't determine home dir.
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return applyEnv(cfg), nil // File doesn't exist yet — use defaults.
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load: %w", err)
	}

	return applyEnv(cfg), nil
}

// applyEnv lets environment variables override file-stored secrets.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("BODYPRESS_API_KEY"); v != "" {
		cfg.Remote.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Remote.APIKey == "" {
		cfg.Remote.APIKey = v
	}
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
